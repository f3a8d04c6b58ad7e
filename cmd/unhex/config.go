package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"unhex/internal/ctxlog"
	"unhex/internal/db"
	"unhex/internal/hexdec"
	"unhex/internal/report"
	"unhex/internal/server"
)

const defaultConfigFile = "unhex.yaml"

type Config struct {
	Log    ctxlog.Config  `yaml:"log"`
	DB     db.Config      `yaml:"db"`
	Decode hexdec.Options `yaml:"decode"`
	Report report.Config  `yaml:"report"`
	Server server.Config  `yaml:"server"`
}

func DefaultConfig() Config {
	return Config{
		Report: report.Config{
			Color: true,
			Hints: true,
		},
		Server: server.DefaultConfig(),
	}
}

// LoadConfig reads filename over the defaults. A missing file is only an
// error when it was asked for explicitly.
func LoadConfig(ctx context.Context, filename string, explicit bool) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(filename)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return Config{}, fmt.Errorf("open %q: %w", filename, err)
	}
	defer ctxlog.Close(ctx, "config file", file)

	dec := yaml.NewDecoder(file, yaml.Strict())

	err = dec.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("yaml: %w", err)
	}

	return config, nil
}
