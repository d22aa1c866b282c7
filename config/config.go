package config

import (
	"bytes"
	"strings"

	"github.com/fatih/structs"
	"github.com/jeremywohl/flatten"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ParseConfig loads <name>.yaml from the first matching path, without
// embedded defaults.
func ParseConfig[T any](name string, configFilePaths []string) (*T, error) {
	return ParseConfigWithEmbedded[T](name, configFilePaths, nil)
}

// ParseConfigWithEmbedded tries to load config from disk,
// and if the file is NOT found, falls back to embeddedYAML (if provided).
// Environment variables override both, e.g. EXPLORER_DEFAULTPROVIDER for
// Explorer.DefaultProvider.
func ParseConfigWithEmbedded[T any](name string, configFilePaths []string, embeddedYAML []byte) (*T, error) {
	v := viper.New()
	for _, p := range configFilePaths {
		v.AddConfigPath(p)
	}

	v.SetConfigName(name)
	v.SetConfigType("yaml")

	if err := bindAllConfigKeys[T](v); err != nil {
		return nil, err
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var nfErr viper.ConfigFileNotFoundError
		if errors.As(err, &nfErr) && len(embeddedYAML) > 0 {
			if err2 := v.ReadConfig(bytes.NewReader(embeddedYAML)); err2 != nil {
				return nil, errors.Wrap(err2, "failed to load embedded default config")
			}
		} else {
			return nil, errors.Wrapf(err, "failed to read %s config", name)
		}
	}

	c := new(T)
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "unable to decode into struct")
	}

	return c, nil
}

// Workaround for major viper issue with env variables, documented here
// https://github.com/spf13/viper/issues/761
func bindAllConfigKeys[T any](v *viper.Viper) error {
	var cd T
	// Transform config struct to map
	confMap := structs.Map(cd)

	// Flatten nested conf map
	flat, err := flatten.Flatten(confMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "unable to flatten config")
	}

	// Bind each conf field to environment vars
	for key := range flat {
		if err := v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "unable to bind env var: %s", key)
		}
	}
	return nil
}
