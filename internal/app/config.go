package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkspacePath string // .hcl file or directory
	SettingsPath  string // optional cmdlist.toml; empty looks next to the workspace

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int

	// Frames overrides the replay's frame count when positive.
	Frames int
	// Reload replays a second time after reloading the workspace.
	Reload bool
	// RecursionLimit overrides the configured ceiling when positive.
	RecursionLimit int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkspacePath == "" {
		return nil, errors.New("WorkspacePath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount cannot be negative")
	}
	if cfg.Frames < 0 {
		return nil, errors.New("Frames cannot be negative")
	}
	return &cfg, nil
}
