package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/specialistvlad/cmdlist/internal/config"
	"github.com/specialistvlad/cmdlist/internal/engine"
)

// SettingsFile is the name of the optional engine settings file looked up
// next to the workspace.
const SettingsFile = "cmdlist.toml"

// Settings are engine defaults read from the TOML settings file.
type Settings struct {
	Engine EngineSettings `toml:"engine"`
}

// EngineSettings is the [engine] table.
type EngineSettings struct {
	RecursionLimit int   `toml:"recursion_limit"`
	ParamSlots     int   `toml:"param_slots"`
	NegativeTruth  *bool `toml:"negative_truth"`
	PoolCapacity   int   `toml:"pool_capacity"`
}

// LoadSettings reads path. An empty path looks for SettingsFile next to the
// workspace; a missing default file is not an error.
func LoadSettings(path, workspace string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		dir := workspace
		if info, err := os.Stat(workspace); err == nil && !info.IsDir() {
			dir = filepath.Dir(workspace)
		}
		path = filepath.Join(dir, SettingsFile)
	}

	var s Settings
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &s, nil
		}
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("settings %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &s, nil
}

// engineOptions layers the option sources: the settings file, then the
// workspace settings block, then the command line.
func engineOptions(file *Settings, ws config.Settings, cfg *Config) engine.Options {
	opts := engine.Options{
		RecursionLimit: file.Engine.RecursionLimit,
		ParamSlots:     file.Engine.ParamSlots,
		PoolCapacity:   file.Engine.PoolCapacity,
	}
	if file.Engine.NegativeTruth != nil {
		opts.NegativeTruth = *file.Engine.NegativeTruth
	}
	if ws.RecursionLimit > 0 {
		opts.RecursionLimit = ws.RecursionLimit
	}
	if ws.ParamSlots > 0 {
		opts.ParamSlots = ws.ParamSlots
	}
	if ws.PoolCapacity > 0 {
		opts.PoolCapacity = ws.PoolCapacity
	}
	if ws.NegativeTruth {
		opts.NegativeTruth = true
	}
	if cfg.RecursionLimit > 0 {
		opts.RecursionLimit = cfg.RecursionLimit
	}
	return opts
}
