// Package config holds app wide settings unmarshalled from Viper, either
// from an optional xssp.yaml or from the built-in defaults.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// JackHmmerConfig is settings for the external jackhmmer search.
type JackHmmerConfig struct {
	// path to the jackhmmer executable
	Path string `mapstructure:"path"`

	// directory holding the databank FASTA files
	FastaDir string `mapstructure:"fasta-dir"`

	// base name of the databank FASTA file
	Databank string `mapstructure:"databank"`

	// number of jackhmmer iterations
	Iterations int `mapstructure:"iterations"`

	// how long one search may run before it is killed
	MaxRunTime time.Duration `mapstructure:"max-run-time"`
}

// PipelineConfig is settings for profile generation.
type PipelineConfig struct {
	// chains shorter than this are skipped
	MinChainLength int `mapstructure:"min-chain-length"`

	// rerun a timed-out search once before giving up
	RetryAfterTimeout bool `mapstructure:"retry-after-timeout"`
}

// ServerConfig is settings for the HTTP API.
type ServerConfig struct {
	// listen address, e.g. ":8080"
	Addr string `mapstructure:"addr"`
}

// Config is the root-level settings struct.
type Config struct {
	JackHmmer JackHmmerConfig `mapstructure:"jackhmmer"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Server    ServerConfig    `mapstructure:"server"`
}

// New returns a Config populated by Viper: defaults first, overridden by an
// xssp.yaml found in the working directory or in /etc/xssp. A missing
// config file is fine; a malformed one is not.
func New() (Config, error) {
	viper.SetDefault("jackhmmer.path", "jackhmmer")
	viper.SetDefault("jackhmmer.fasta-dir", "/data/fasta")
	viper.SetDefault("jackhmmer.databank", "uniprot_sprot")
	viper.SetDefault("jackhmmer.iterations", 5)
	viper.SetDefault("jackhmmer.max-run-time", 3600*time.Second)
	viper.SetDefault("pipeline.min-chain-length", 25)
	viper.SetDefault("pipeline.retry-after-timeout", true)
	viper.SetDefault("server.addr", ":8080")

	viper.SetConfigName("xssp")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/xssp")

	var c Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}
	if err := viper.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
