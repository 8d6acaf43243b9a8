package swagger

import _ "embed"

// OpenAPI is the game API document served at /openapi.yaml and rendered by
// the /api-docs page: sessions, taps, results, leaderboard and catalog.
//
//go:embed openapi.yaml
var OpenAPI []byte
