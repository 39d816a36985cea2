package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ersonp/campaign-core/internal/domain/schema"
	"github.com/ersonp/campaign-core/internal/domain/services"
)

// JournalHandler serves the journal endpoints.
type JournalHandler struct {
	journals *services.JournalService
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(journals *services.JournalService) *JournalHandler {
	return &JournalHandler{journals: journals}
}

// HandleList returns the caller's journals.
func (h *JournalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.journals.List(r.Context(), userFrom(r).ID)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// HandleGet returns a single journal.
func (h *JournalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	j, err := h.journals.Get(r.Context(), userFrom(r).ID, pathID(r))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, j)
}

// HandleMentions returns the entity links in a journal with their targets.
func (h *JournalHandler) HandleMentions(w http.ResponseWriter, r *http.Request) {
	mentions, err := h.journals.Mentions(r.Context(), userFrom(r).ID, pathID(r))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, mentions)
}

// HandleCreate stores a new journal for the caller.
func (h *JournalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	in, err := schema.DecodeJournal(body, schema.Create)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	j, err := h.journals.Create(r.Context(), userFrom(r).ID, in)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, j)
}

// HandleUpdate applies a partial update.
func (h *JournalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	in, err := schema.DecodeJournal(body, schema.Update)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	j, err := h.journals.Update(r.Context(), userFrom(r).ID, pathID(r), in)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, j)
}

// HandleDelete removes a journal.
func (h *JournalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.journals.Delete(r.Context(), userFrom(r).ID, pathID(r)); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID reads the {id} route variable. Routes constrain it to digits, so
// only an overflowing value fails to parse; it maps to an id that never exists.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return -1
	}
	return id
}
