package main

import (
	_ "embed"

	"github.com/ChainSafe/forest-explorer/config"
	"github.com/ChainSafe/forest-explorer/explorer"
	"github.com/ChainSafe/forest-explorer/log"
	"github.com/ChainSafe/forest-explorer/redis"
)

const configName = "forest-explorer"

//go:embed default.yaml
var defaultConfig []byte

type metricsConfig struct {
	// Address serves /metrics when set, e.g. ":9090".
	Address string
}

type appConfig struct {
	Explorer explorer.Config
	Log      log.Config
	Redis    redis.Config
	Metrics  metricsConfig
}

func loadConfig(paths []string) (*appConfig, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return config.ParseConfigWithEmbedded[appConfig](configName, paths, defaultConfig)
}
