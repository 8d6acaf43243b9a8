package kv

import (
	"fmt"
	"strings"
)

// Supported engines.
const (
	EngineSQLite = "sqlite"
	EngineJSON   = "json"
	EngineMemory = "memory"
)

// NewByEngine opens the backend named by engine at path. An empty engine
// selects sqlite.
func NewByEngine(engine, path string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineSQLite:
		return NewSQLite(path)
	case EngineJSON:
		return NewFile(path)
	case EngineMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, engine)
	}
}
