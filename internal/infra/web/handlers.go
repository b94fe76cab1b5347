package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"map-ai-relay/internal/domain"
	"map-ai-relay/internal/infra/logging"
)

type placeResolveRequest struct {
	Place string `json:"place"`
}

type polygonInterpretRequest struct {
	Text string `json:"text"`
}

type chatRequest struct {
	Message string         `json:"message"`
	State   map[string]any `json:"state"`
}

// errorResponse is the structured failure contract: an error kind, a
// human-readable message, and raw model output where it helps diagnosis.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Raw   string `json:"raw,omitempty"`
}

func (s *Server) handleResolvePlace(w http.ResponseWriter, r *http.Request) {
	var req placeResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "validation"})
		return
	}

	coords, err := s.placeUC.Resolve(r.Context(), req.Place)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, coords)
}

func (s *Server) handleInterpretPolygon(w http.ResponseWriter, r *http.Request) {
	var req polygonInterpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "validation"})
		return
	}

	spec, err := s.polygonUC.Interpret(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "validation"})
		return
	}

	sessionID := s.tokens.EnsureSession(w, r)
	ctx := logging.WithSessionID(r.Context(), sessionID)

	cmd, err := s.chatUC.Send(ctx, sessionID, req.Message, req.State)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var gw *domain.GatewayError
	var malformed *domain.MalformedJSONError

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "validation"})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error(), Kind: "rate_limited"})
	case errors.As(err, &gw):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: "gateway"})
	case errors.Is(err, domain.ErrNoJSONFound):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: "extraction"})
	case errors.As(err, &malformed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: "parse", Raw: malformed.Raw})
	case errors.Is(err, domain.ErrInvalidCoordinates):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: "semantic"})
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("unhandled request error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: "internal"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
