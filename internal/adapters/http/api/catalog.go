package api

import (
	"context"
	"net/http"

	"github.com/versuslab/versus/internal/domain/catalog"
)

// CatalogDependencies defines the interface for catalog reads.
type CatalogDependencies interface {
	Catalog(ctx context.Context) []catalog.Item
}

// CatalogHandler handles catalog requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type catalogResponse struct {
	Items []catalog.Item `json:"items"`
}

// HandleGetCatalog handles GET /catalog requests.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{Items: h.deps.Catalog(r.Context())})
}
