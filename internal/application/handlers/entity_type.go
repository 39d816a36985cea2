package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ersonp/campaign-core/internal/domain/services"
)

// EntityTypeHandler serves the entity type templates.
type EntityTypeHandler struct {
	service *services.EntityTypeService
}

// NewEntityTypeHandler creates a new EntityTypeHandler.
func NewEntityTypeHandler(service *services.EntityTypeService) *EntityTypeHandler {
	return &EntityTypeHandler{
		service: service,
	}
}

// HandleList returns all entity types with their property keys.
func (h *EntityTypeHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.service.List())
}

// HandleDescribe returns the template of a single type.
func (h *EntityTypeHandler) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.service.Get(mux.Vars(r)["name"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}
