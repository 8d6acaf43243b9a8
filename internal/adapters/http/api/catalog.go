package api

import (
	"net/http"

	"github.com/okian/spotcheck/internal/domain/types"
)

// CatalogProvider describes the stage.
type CatalogProvider interface {
	Catalog() types.CatalogView
}

// CatalogHandler serves the hotspot catalog and rules.
type CatalogHandler struct {
	deps CatalogProvider
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogProvider) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetCatalog handles GET /catalog requests. Debug tells the client to
// draw the hotspot outlines.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog())
}
