package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from path on fs. If path is empty, uses
// DefaultConfigPath. A missing file yields DefaultConfig.
func Load(fs afero.Fs, path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("grammar", cfg.Grammar)
	v.SetDefault("prompt.style", cfg.Prompt.Style)
	v.SetDefault("prompt.theme", cfg.Prompt.Theme)
	v.SetDefault("history.file", cfg.History.File)
	v.SetDefault("history.max_entries", cfg.History.MaxEntries)
	v.SetDefault("history.save_on_submit", cfg.History.SaveOnSubmit)
	v.SetDefault("completion.path", cfg.Completion.Path)

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return Config{}, err
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	cfg.History.File = expandEnv(cfg.History.File)
	for i, dir := range cfg.Completion.Path {
		cfg.Completion.Path[i] = expandEnv(dir)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to path on fs and returns the
// path written. An existing file is only replaced when overwrite is set.
func WriteDefault(fs afero.Fs, path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if !overwrite {
		if _, err := fs.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
