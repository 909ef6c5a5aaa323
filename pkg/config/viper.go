package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Options controls where Load looks for configuration.
type Options struct {
	// File is an explicit config file. When set, the search paths are ignored
	// and a missing file is an error.
	File string
	// Paths are searched in order for Name.yaml when File is empty.
	Paths []string
	// Name is the config file name without extension.
	Name string
	// EnvPrefix namespaces environment overrides, e.g. GENGUID_DATA_DIR.
	EnvPrefix string
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error unless Options.File names it.
func Load(opts Options) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.File, err)
		}
		return v, nil
	}

	v.SetConfigName(opts.Name)
	for _, p := range opts.Paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil // rely on defaults and env vars
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}
