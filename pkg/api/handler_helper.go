package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/orchestrator"
	"github.com/solflu/outbreak/pkg/validation"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// sessionFromPath resolves the session addressed by a /api/v1/simulations/
// URL and returns the remaining sub-path ("start", "countries", ...).
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*orchestrator.Session, string, bool) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/simulations/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Missing session ID")
		return nil, "", false
	}

	session, err := s.orchestrator.Session(id)
	if err != nil {
		if errors.Is(err, orchestrator.ErrSessionNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("Session %s not found", id))
		} else {
			s.respondError(w, http.StatusInternalServerError, "Session lookup failed")
		}
		return nil, "", false
	}
	return session, strings.TrimSuffix(sub, "/"), true
}

// requestDecoder decodes and validates request bodies.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeJSON decodes the request body into the provided struct.
// Returns the decoder for chaining.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := json.NewDecoder(rd.r.Body).Decode(v); err != nil {
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidateCountry validates a country registration request.
func (rd *requestDecoder) ValidateCountry(req *validation.CountryRequest) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validation.ValidateCountryRequest(req); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidateRoute validates a route creation request.
func (rd *requestDecoder) ValidateRoute(req *validation.RouteRequest) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validation.ValidateRouteRequest(req); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// ValidateParameters validates a parameter override request.
func (rd *requestDecoder) ValidateParameters(req *validation.ParametersRequest) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validation.ValidateParametersRequest(req); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// RespondError sends the error response and returns true if there was one.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}
