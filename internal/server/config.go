package server

import (
	"time"
)

type Config struct {
	Port            int           `yaml:"port"`
	LimitBuckets    int           `yaml:"limitBuckets"`
	LimitPeriod     time.Duration `yaml:"limitPeriod"`
	LimitConcurrent int           `yaml:"limitConcurrent"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

func DefaultConfig() Config {
	return Config{
		Port:            8080,
		LimitBuckets:    64,
		LimitPeriod:     10 * time.Millisecond,
		LimitConcurrent: 4,
		MaxBodyBytes:    4 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}
