package handlers

import (
	"net/http"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/schema"
	"github.com/ersonp/campaign-core/internal/domain/services"
)

// EntityHandler serves the entity endpoints.
type EntityHandler struct {
	entities *services.EntityService
	types    *services.EntityTypeService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(entityService *services.EntityService, types *services.EntityTypeService) *EntityHandler {
	return &EntityHandler{
		entities: entityService,
		types:    types,
	}
}

// HandleList returns the caller's entities, filtered by ?type= when set.
func (h *EntityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var typ entities.EntityType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := h.types.ParseType(raw)
		if err != nil {
			respondFailure(w, r, schema.Invalid("type", "must be one of npc, creature, location, organization"))
			return
		}
		typ = parsed
	}

	list, err := h.entities.List(r.Context(), userFrom(r).ID, typ)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// HandleGet returns a single entity.
func (h *EntityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.entities.Get(r.Context(), userFrom(r).ID, pathID(r))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// HandleReferences resolves the entity references held in the properties.
func (h *EntityHandler) HandleReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := h.entities.References(r.Context(), userFrom(r).ID, pathID(r))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, refs)
}

// HandleMentions returns the caller's journals that link to the entity.
func (h *EntityHandler) HandleMentions(w http.ResponseWriter, r *http.Request) {
	journals, err := h.entities.Backlinks(r.Context(), userFrom(r).ID, pathID(r))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, journals)
}

// HandleCreate stores a new entity for the caller.
func (h *EntityHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	in, err := schema.DecodeEntity(body, schema.Create)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	e, err := h.entities.Create(r.Context(), userFrom(r).ID, in)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// HandleUpdate applies a partial update.
func (h *EntityHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	in, err := schema.DecodeEntity(body, schema.Update)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	e, err := h.entities.Update(r.Context(), userFrom(r).ID, pathID(r), in)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// HandleDelete removes an entity.
func (h *EntityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.entities.Delete(r.Context(), userFrom(r).ID, pathID(r)); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
