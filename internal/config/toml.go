// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Drill DrillConfig `toml:"drill"`
	Judge JudgeConfig `toml:"judge"`
}

// DrillConfig maps session settings.
type DrillConfig struct {
	Mode   *string `toml:"mode"`
	Record *bool   `toml:"record"`
}

// JudgeConfig maps semantic judge settings.
type JudgeConfig struct {
	Provider       *string `toml:"provider"`
	Model          *string `toml:"model"`
	BaseURL        *string `toml:"base-url"`
	TimeoutSeconds *int    `toml:"timeout-seconds"`
	Retries        *int    `toml:"retries"`
	MaxTokens      *int    `toml:"max-tokens"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `quizdrill config` when no file exists yet.
const Template = `# quizdrill configuration

[drill]
# mode = "basic"        # basic | ai
# record = true         # store finished sessions in the history database

[judge]
# provider = "openai"   # openai | groq
# model = "gpt-4.1-mini"
# base-url = ""
# timeout-seconds = 20
# retries = 2
# max-tokens = 10
`
