// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/keyloop/internal/domain/rig"
)

// objectRequest mirrors the OpenAPI schema for POST /v1/objects.
type objectRequest struct {
	ObjectID    string              `json:"object_id"`
	Location    *[3]float64         `json:"location,omitempty"`
	Rotation    *[3]float64         `json:"rotation,omitempty"`
	Scale       *[3]float64         `json:"scale,omitempty"`
	Constraints []constraintRequest `json:"constraints,omitempty"`
}

// constraintRequest is one entry of an object's constraint stack.
type constraintRequest struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

func (o objectRequest) validate() error {
	if strings.TrimSpace(o.ObjectID) == "" {
		return errors.New("missing object_id")
	}
	for _, c := range o.Constraints {
		switch c.Type {
		case "copy_location", "copy_rotation", "copy_scale":
		default:
			return fmt.Errorf("unknown constraint type %q", c.Type)
		}
		if strings.TrimSpace(c.Target) == "" {
			return errors.New("missing constraint target")
		}
	}
	return nil
}

// cycleRequest mirrors the OpenAPI schema for POST /v1/objects/{id}/cycle.
type cycleRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ObjectsHandler handles object management and curve queries.
type ObjectsHandler struct {
	deps Dependencies
}

// NewObjectsHandler creates a new objects handler.
func NewObjectsHandler(deps Dependencies) *ObjectsHandler {
	return &ObjectsHandler{deps: deps}
}

// HandleObjects handles POST /v1/objects requests.
func (h *ObjectsHandler) HandleObjects(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_object"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req objectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ob := rig.NewObject(req.ObjectID)
	if req.Location != nil {
		ob.Location = rig.Vec3(*req.Location)
	}
	if req.Rotation != nil {
		ob.Rotation = rig.Vec3(*req.Rotation)
	}
	if req.Scale != nil {
		ob.Scale = rig.Vec3(*req.Scale)
	}

	// Constraint targets must already be registered.
	for _, c := range req.Constraints {
		target, err := h.deps.Object(r.Context(), c.Target)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown_target", WrapKind(op, ErrBadRequest, err))
			return
		}
		switch c.Type {
		case "copy_location":
			ob.Constraints = append(ob.Constraints, rig.CopyLocation{Target: target})
		case "copy_rotation":
			ob.Constraints = append(ob.Constraints, rig.CopyRotation{Target: target})
		case "copy_scale":
			ob.Constraints = append(ob.Constraints, rig.CopyScale{Target: target})
		}
	}

	h.deps.AddObject(r.Context(), ob)
	writeJSON(w, http.StatusCreated, ackResponse{Status: "created"})
}

// HandleObjectSubtree dispatches /v1/objects/{id}... requests:
//
//	GET    /v1/objects/{id}/curves -> stored curves
//	POST   /v1/objects/{id}/cycle  -> configure cyclic range
//	DELETE /v1/objects/{id}        -> remove object and its action
func (h *ObjectsHandler) HandleObjectSubtree(w http.ResponseWriter, r *http.Request) {
	const op = "api.object_subtree"
	rest := strings.TrimPrefix(r.URL.Path, "/v1/objects/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	switch {
	case sub == "" && r.Method == http.MethodDelete:
		h.deps.RemoveObject(r.Context(), id)
		writeJSON(w, http.StatusOK, ackResponse{Status: "removed"})
	case sub == "curves" && r.Method == http.MethodGet:
		h.handleGetCurves(w, r, id)
	case sub == "cycle" && r.Method == http.MethodPost:
		h.handlePostCycle(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *ObjectsHandler) handleGetCurves(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.get_curves"
	entries, err := h.deps.Curves(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ObjectsHandler) handlePostCycle(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.post_cycle"
	var req cycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if _, err := h.deps.Object(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	if err := h.deps.ConfigureCycle(r.Context(), id, req.Start, req.End); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "configured"})
}
