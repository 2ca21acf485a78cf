package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string   // hcl file or directory; empty skips the parity check
	Exprs        []string // host expressions evaluated in order
	ScriptPath   string   // hcl file of attributes evaluated after Exprs

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	AnnounceURL       string
	AnnounceNamespace string
	AnnounceEvent     string // empty means announce.DefaultEvent
	AnnounceAckEvent  string // empty means no acknowledgement is awaited
	AnnounceTimeout   time.Duration
	AnnounceInsecure  bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort %d is out of range", cfg.HealthcheckPort)
	}
	if cfg.AnnounceTimeout < 0 {
		return nil, errors.New("AnnounceTimeout cannot be negative")
	}
	if cfg.AnnounceURL == "" && (cfg.AnnounceNamespace != "" || cfg.AnnounceAckEvent != "") {
		return nil, errors.New("AnnounceNamespace and AnnounceAckEvent require AnnounceURL")
	}
	for i, expr := range cfg.Exprs {
		if expr == "" {
			return nil, fmt.Errorf("expression %d is empty", i+1)
		}
	}
	return &cfg, nil
}
