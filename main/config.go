package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rawbytedev/fastbuffer"
)

// Config is read from fastbuffer.yaml in the working directory (or the file
// named by --config), FASTBUFFER_* environment variables and flags.
type Config struct {
	InitialSize int    `mapstructure:"initial_size"`
	MaxSize     int    `mapstructure:"max_size"`
	Allocator   string `mapstructure:"allocator"`
	Log         struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("initial_size", 1500)
	v.SetDefault("max_size", 1<<20)
	v.SetDefault("allocator", "heap")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"initial-size": "initial_size",
	"max-size":     "max_size",
	"allocator":    "allocator",
	"log-level":    "log.level",
}

func loadConfig(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("FASTBUFFER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "binding flag %s", name)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fastbuffer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config")
		}
		logrus.Debug("config file not found, using defaults")
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Debug("config loaded")
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}

func (c *Config) configureLogging() error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	switch c.Log.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func (c *Config) writerOptions() (fastbuffer.Options, error) {
	alloc, err := fastbuffer.ParseAllocator(c.Allocator)
	if err != nil {
		return fastbuffer.Options{}, err
	}
	return fastbuffer.Options{
		MaxSize:   c.MaxSize,
		Allocator: alloc,
		Logger:    logrus.WithField("prefix", "fastbuffer"),
	}, nil
}
