package game

import "errors"

var (
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrNotYourTurn    = errors.New("action out of turn")
	ErrWrongPhase     = errors.New("action not valid in current phase")
	ErrNotAWinner     = errors.New("player is not a winner of this hand")
	ErrAlreadyClaimed = errors.New("winnings already claimed")
)
