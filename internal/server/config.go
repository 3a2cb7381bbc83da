package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/coderodent-calfee/texas-holdem/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings `hcl:"server,block"`
	Table   TableSettings  `hcl:"table,block"`
	Players []PlayerConfig `hcl:"player,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableSettings defines the table rules and timing
type TableSettings struct {
	BigBlind               int  `hcl:"big_blind,optional"`
	StartingChips          int  `hcl:"starting_chips,optional"`
	StartingPlayers        int  `hcl:"starting_players,optional"`
	BlindPauseMS           int  `hcl:"blind_pause_ms,optional"`
	RevealCountdownSeconds int  `hcl:"reveal_countdown_seconds,optional"`
	ShortCircuitFolds      bool `hcl:"short_circuit_folds,optional"`
}

// PlayerConfig names one seat in the table's player pool
type PlayerConfig struct {
	Name  string `hcl:"name,label"`
	Chips int    `hcl:"chips,optional"`
}

// DefaultConfig returns the default server configuration: a seven-handed
// table of 500-chip stacks.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Table: TableSettings{
			BigBlind:               game.DefaultBigBlind,
			StartingChips:          500,
			StartingPlayers:        game.DefaultStartingCount,
			BlindPauseMS:           1000,
			RevealCountdownSeconds: game.DefaultRevealCountdown,
		},
	}
	for i := 0; i < game.MaxPlayers; i++ {
		cfg.Players = append(cfg.Players, PlayerConfig{
			Name:  fmt.Sprintf("Player %d", i+1),
			Chips: cfg.Table.StartingChips,
		})
	}
	return cfg
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Table.BigBlind == 0 {
		c.Table.BigBlind = def.Table.BigBlind
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = def.Table.StartingChips
	}
	if c.Table.StartingPlayers == 0 {
		c.Table.StartingPlayers = def.Table.StartingPlayers
	}
	if c.Table.BlindPauseMS == 0 {
		c.Table.BlindPauseMS = def.Table.BlindPauseMS
	}
	if c.Table.RevealCountdownSeconds == 0 {
		c.Table.RevealCountdownSeconds = def.Table.RevealCountdownSeconds
	}
	if len(c.Players) == 0 {
		c.Players = def.Players
	}
	for i := range c.Players {
		if c.Players[i].Chips == 0 {
			c.Players[i].Chips = c.Table.StartingChips
		}
	}
}

// Validate checks the configuration for values the game cannot run with
func (c *Config) Validate() error {
	if c.Table.BigBlind < 2 {
		return fmt.Errorf("big_blind must be at least 2, got %d", c.Table.BigBlind)
	}
	if c.Table.BigBlind%2 != 0 {
		return fmt.Errorf("big_blind must be even so the small blind is whole, got %d", c.Table.BigBlind)
	}
	if len(c.Players) < game.MinPlayers {
		return fmt.Errorf("at least %d players required, got %d", game.MinPlayers, len(c.Players))
	}
	if c.Table.StartingPlayers < game.MinPlayers || c.Table.StartingPlayers > game.MaxPlayers {
		return fmt.Errorf("starting_players must be between %d and %d, got %d",
			game.MinPlayers, game.MaxPlayers, c.Table.StartingPlayers)
	}
	if c.Table.StartingPlayers > len(c.Players) {
		return fmt.Errorf("starting_players %d exceeds the %d configured players",
			c.Table.StartingPlayers, len(c.Players))
	}
	seen := make(map[string]struct{}, len(c.Players))
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player blocks need a name label")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate player name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Chips < 0 {
			return fmt.Errorf("player %q has negative chips", p.Name)
		}
	}
	return nil
}

// ListenAddr returns the host:port the server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
