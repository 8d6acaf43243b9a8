package config

import "errors"

// Sentinel errors for the game server configuration. ErrLoadConfig wraps
// failures reading the YAML file or environment; ErrInvalidConfig wraps
// values Validate rejects, such as an unknown profile or store engine.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
