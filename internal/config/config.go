// Package config loads the oursh configuration file.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// FileName is the configuration file name inside the config directory.
const FileName = "config.yaml"

// Config is the top-level shell configuration.
type Config struct {
	ConfigVersion int              `mapstructure:"config_version" yaml:"config_version" validate:"eq=1"`
	Grammar       string           `mapstructure:"grammar" yaml:"grammar" validate:"oneof=primary alternate"`
	Prompt        PromptConfig     `mapstructure:"prompt" yaml:"prompt"`
	History       HistoryConfig    `mapstructure:"history" yaml:"history"`
	Completion    CompletionConfig `mapstructure:"completion" yaml:"completion"`
}

// PromptConfig selects how the prompt looks.
type PromptConfig struct {
	Style string `mapstructure:"style" yaml:"style" validate:"oneof=plain sh user long short"`
	Theme string `mapstructure:"theme" yaml:"theme" validate:"oneof=default dark solarized"`
}

// HistoryConfig controls history persistence.
type HistoryConfig struct {
	File         string `mapstructure:"file" yaml:"file"`
	MaxEntries   int    `mapstructure:"max_entries" yaml:"max_entries" validate:"gte=1,lte=1000000"`
	SaveOnSubmit bool   `mapstructure:"save_on_submit" yaml:"save_on_submit"`
}

// CompletionConfig controls Tab completion. An empty Path completes from
// $PATH.
type CompletionConfig struct {
	Path []string `mapstructure:"path" yaml:"path" validate:"dive,required"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Grammar:       "primary",
		Prompt: PromptConfig{
			Style: "user",
			Theme: "default",
		},
		History: HistoryConfig{
			File:         "~/.oursh_history",
			MaxEntries:   1000,
			SaveOnSubmit: true,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/oursh/config.yaml, falling
// back to ~/.config/oursh/config.yaml.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "oursh", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "oursh", FileName), nil
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}
