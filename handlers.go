package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the fridge API.
type Handler struct {
	cheeses     *Resources
	zones       *Resources
	assignments *Assignments
	transfers   *Transfers
	logger      *zap.Logger
}

// NewHandler creates a Handler with dependencies.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	cheeses := NewCheeses(store)
	zones := NewZones(store)
	return &Handler{
		cheeses:     cheeses,
		zones:       zones,
		assignments: NewAssignments(store, zones),
		transfers:   NewTransfers(store),
		logger:      logger,
	}
}

// newRouter builds the full route table with logging and the If-Match guard.
func newRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(logger))
	r.Use(requireIfMatch)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/cheeses", func(r chi.Router) {
		r.Post("/", h.createCheese)
		r.Get("/", h.listCheeses)
		r.Delete("/", h.deleteAllCheeses)
		r.Get("/{id}", h.getCheese)
		r.Put("/{id}", h.updateCheese)
		r.Delete("/{id}", h.deleteCheese)
	})

	r.Route("/zones", func(r chi.Router) {
		r.Post("/", h.createZone)
		r.Get("/", h.listZones)
		r.Get("/{id}", h.getZone)
		r.Put("/{id}", h.updateZone)
		r.Delete("/{id}", h.deleteZone)
		r.Get("/{id}/cheeses", h.listZoneCheeses)
	})

	r.Get("/zone-assignments", h.issueAssignmentRequest)
	r.Post("/zone-assignments/{requestId}", h.redeemAssignmentRequest)
	r.Post("/zone-transfers", h.transferCheese)

	return r
}

// createCheese processes POST /cheeses.
func (h *Handler) createCheese(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	id, version, err := h.cheeses.Create(r.Context(), payload)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("ETag", version)
	respondJSON(w, http.StatusAccepted, map[string]string{"cheese_id": id})
}

// listCheeses processes GET /cheeses.
func (h *Handler) listCheeses(w http.ResponseWriter, r *http.Request) {
	docs, err := h.cheeses.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// deleteAllCheeses processes DELETE /cheeses. Always succeeds.
func (h *Handler) deleteAllCheeses(w http.ResponseWriter, r *http.Request) {
	if err := h.cheeses.DeleteAll(r.Context()); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// getCheese processes GET /cheeses/{id}.
func (h *Handler) getCheese(w http.ResponseWriter, r *http.Request) {
	h.getResource(w, r, h.cheeses)
}

// updateCheese processes PUT /cheeses/{id}.
func (h *Handler) updateCheese(w http.ResponseWriter, r *http.Request) {
	h.updateResource(w, r, h.cheeses)
}

// deleteCheese processes DELETE /cheeses/{id}.
func (h *Handler) deleteCheese(w http.ResponseWriter, r *http.Request) {
	h.deleteResource(w, r, h.cheeses)
}

// createZone processes POST /zones.
func (h *Handler) createZone(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	id, version, err := h.zones.Create(r.Context(), payload)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("ETag", version)
	respondJSON(w, http.StatusAccepted, map[string]string{"_id": id})
}

// listZones processes GET /zones.
func (h *Handler) listZones(w http.ResponseWriter, r *http.Request) {
	docs, err := h.zones.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// getZone processes GET /zones/{id}.
func (h *Handler) getZone(w http.ResponseWriter, r *http.Request) {
	h.getResource(w, r, h.zones)
}

// updateZone processes PUT /zones/{id}.
func (h *Handler) updateZone(w http.ResponseWriter, r *http.Request) {
	h.updateResource(w, r, h.zones)
}

// deleteZone processes DELETE /zones/{id}.
func (h *Handler) deleteZone(w http.ResponseWriter, r *http.Request) {
	h.deleteResource(w, r, h.zones)
}

// listZoneCheeses processes GET /zones/{id}/cheeses.
func (h *Handler) listZoneCheeses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validObjectID(id) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	bindings, err := h.assignments.ListByZone(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bindings)
}

// issueAssignmentRequest processes GET /zone-assignments.
func (h *Handler) issueAssignmentRequest(w http.ResponseWriter, r *http.Request) {
	id, err := h.assignments.IssueRequest(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"request_id": id})
}

// redeemAssignmentRequest processes POST /zone-assignments/{requestId}.
func (h *Handler) redeemAssignmentRequest(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	if err := validateDocument(zoneAssignmentSchema, payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestID := chi.URLParam(r, "requestId")
	if !validObjectID(requestID) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err := h.assignments.Assign(r.Context(), requestID, payload); err != nil {
		switch {
		case errors.Is(err, ErrZoneNotFound):
			respondError(w, http.StatusBadRequest, fmt.Sprintf(msgZoneNotFound, payload.stringField("zone_id")))
		case errors.Is(err, ErrCheeseAssigned):
			respondError(w, http.StatusBadRequest, msgCheeseAssigned)
		default:
			h.respondServiceError(w, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// transferCheese processes POST /zone-transfers.
func (h *Handler) transferCheese(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	if err := validateDocument(zoneTransferSchema, payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cheeseID := payload.stringField("cheese_id")
	fromZoneID := payload.stringField("from_zone_id")
	toZoneID := payload.stringField("to_zone_id")

	if err := h.transfers.Transfer(r.Context(), cheeseID, fromZoneID, toZoneID); err != nil {
		if errors.Is(err, ErrStaleBinding) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(msgStaleBinding, cheeseID, fromZoneID))
			return
		}
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// getResource handles GET for a versioned resource by id.
func (h *Handler) getResource(w http.ResponseWriter, r *http.Request, res *Resources) {
	id := chi.URLParam(r, "id")
	if !validObjectID(id) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	doc, err := res.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("ETag", doc.stringField(fieldVersion))
	respondJSON(w, http.StatusOK, doc)
}

// updateResource handles PUT for a versioned resource by id. The payload
// replaces the stored document wholesale; the If-Match header must carry the
// version token last read.
func (h *Handler) updateResource(w http.ResponseWriter, r *http.Request, res *Resources) {
	id := chi.URLParam(r, "id")
	if !validObjectID(id) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	payload, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	version, err := res.Update(r.Context(), id, payload, r.Header.Get("If-Match"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("ETag", version)
	respondJSON(w, http.StatusAccepted, map[string]string{"_id": id})
}

// deleteResource handles DELETE for a versioned resource by id.
func (h *Handler) deleteResource(w http.ResponseWriter, r *http.Request, res *Resources) {
	id := chi.URLParam(r, "id")
	if !validObjectID(id) {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err := res.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// decodeDocument reads the request body as a single JSON object. A false
// return means the error response has already been written.
func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (Document, bool) {
	var payload Document
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return nil, false
	}
	return payload, true
}

// respondServiceError maps service errors onto HTTP responses.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, ErrPreconditionMissing):
		respondError(w, http.StatusBadRequest, msgIfMatchMissing)
	case errors.Is(err, ErrVersionConflict):
		respondError(w, http.StatusBadRequest, msgIfMatchInvalid)
	default:
		h.logger.Error("internal error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes the standard error envelope.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
