// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/keyloop/internal/domain/channel"
	"github.com/okian/keyloop/internal/domain/model"
)

// keyframeRequest mirrors the OpenAPI schema for POST /v1/keyframes.
type keyframeRequest struct {
	RequestID  string  `json:"request_id,omitempty"`
	ObjectID   string  `json:"object_id"`
	Set        string  `json:"set"`
	Frame      float64 `json:"frame"`
	Mode       string  `json:"mode,omitempty"`
	CycleAware bool    `json:"cycle_aware,omitempty"`
	TS         string  `json:"ts,omitempty"`
}

func (k keyframeRequest) validate() error {
	switch {
	case strings.TrimSpace(k.ObjectID) == "":
		return errors.New("missing object_id")
	case strings.TrimSpace(k.Set) == "":
		return errors.New("missing set")
	}
	if _, err := channel.ResolveSet(k.Set); err != nil {
		return err
	}
	switch model.Mode(k.Mode) {
	case "", model.ModeNormal, model.ModeVisual:
	default:
		return errors.New("invalid mode; must be NORMAL or VISUAL")
	}
	if k.TS != "" {
		if _, err := time.Parse(time.RFC3339, k.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

// KeyframesHandler handles keyframe insertion requests.
type KeyframesHandler struct {
	deps Dependencies
}

// NewKeyframesHandler creates a new keyframes handler.
func NewKeyframesHandler(deps Dependencies) *KeyframesHandler {
	return &KeyframesHandler{deps: deps}
}

// HandlePostKeyframe handles POST /v1/keyframes requests.
func (h *KeyframesHandler) HandlePostKeyframe(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_keyframe"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req keyframeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	mode := model.ModeNormal
	if req.Mode != "" {
		mode = model.Mode(req.Mode)
	}
	ts := time.Now()
	if req.TS != "" {
		ts, _ = time.Parse(time.RFC3339, req.TS)
	}

	id, ok := h.deps.Enqueue(r.Context(), model.KeyRequest{
		RequestID:  req.RequestID,
		ObjectID:   req.ObjectID,
		Set:        req.Set,
		Frame:      req.Frame,
		Mode:       mode,
		CycleAware: req.CycleAware,
		TS:         ts,
	})
	if !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: id})
}
