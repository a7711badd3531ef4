package api

import (
	"net/http"

	"github.com/solflu/outbreak/pkg/orchestrator"
	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/validation"
)

func (s *Server) sessionToResponse(session *orchestrator.Session) SessionResponse {
	state := session.State()
	return SessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		Running:   session.Running(),
		Steps:     session.Steps(),
		Countries: len(state.Countries),
	}
}

// handleSessions serves the /api/v1/simulations collection
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions := s.orchestrator.Sessions()
		response := SessionListResponse{
			Sessions: make([]SessionResponse, 0, len(sessions)),
			Count:    len(sessions),
		}
		for _, session := range sessions {
			response.Sessions = append(response.Sessions, s.sessionToResponse(session))
		}
		s.respondJSON(w, http.StatusOK, response)

	case http.MethodPost:
		session, err := s.orchestrator.CreateSession()
		if err != nil {
			s.respondError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		s.respondJSON(w, http.StatusCreated, s.sessionToResponse(session))

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSession routes /api/v1/simulations/{id} and its sub-resources
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, sub, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	switch sub {
	case "":
		s.handleSessionRoot(w, r, session)
	case "start":
		s.handleSessionStart(w, r, session)
	case "stop":
		s.handleSessionStop(w, r, session)
	case "step":
		s.handleSessionStep(w, r, session)
	case "state":
		s.handleSessionState(w, r, session)
	case "stats":
		s.handleSessionStats(w, r, session)
	case "diff":
		s.handleSessionDiff(w, r, session)
	case "parameters":
		s.handleSessionParameters(w, r, session)
	case "countries":
		s.handleCountries(w, r, session)
	case "routes":
		s.handleRoutes(w, r, session)
	default:
		s.respondError(w, http.StatusNotFound, "Unknown resource: "+sub)
	}
}

func (s *Server) handleSessionRoot(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	switch r.Method {
	case http.MethodGet:
		s.respondJSON(w, http.StatusOK, s.sessionToResponse(session))
	case http.MethodDelete:
		if err := s.orchestrator.DeleteSession(session.ID); err != nil {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"deleted": session.ID})
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if session.State().GlobalStats.TotalPopulation <= 0 {
		s.respondError(w, http.StatusConflict, "Session has no countries")
		return
	}
	if err := s.orchestrator.StartSession(session.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.sessionToResponse(session))
}

func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := s.orchestrator.StopSession(session.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.sessionToResponse(session))
}

// handleSessionStep advances a stopped session by one tick
func (s *Server) handleSessionStep(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if session.Running() {
		s.respondError(w, http.StatusConflict, "Session loop is running, stop it before manual stepping")
		return
	}

	params := simulation.DefaultParameters()
	if override := session.Override(); override != nil {
		params = *override
	}

	snapshot, err := session.Step(params)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.respondJSON(w, http.StatusOK, session.CachedState())
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	state := session.CachedState()
	response := StatsResponse{
		GlobalStats: state.GlobalStats,
		Strain:      state.MutationState.Strain,
		Mutations:   state.MutationState.MutationCount,
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSessionDiff(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	diff := session.Diff()
	if diff == nil {
		s.respondError(w, http.StatusNotFound, "Not enough snapshots for a diff")
		return
	}
	s.respondJSON(w, http.StatusOK, diff)
}

// handleSessionParameters pins or clears a manual parameter override
func (s *Server) handleSessionParameters(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	switch r.Method {
	case http.MethodPut:
		var req validation.ParametersRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateParameters(&req).RespondError() {
			return
		}
		params := simulation.Parameters{
			InfectionRate:         req.InfectionRate,
			RecoveryRate:          req.RecoveryRate,
			SpeedMultiplier:       req.SpeedMultiplier,
			TransmissionIntensity: req.TransmissionIntensity,
		}
		session.SetOverride(&params)
		s.respondJSON(w, http.StatusOK, params)

	case http.MethodDelete:
		session.SetOverride(nil)
		s.respondJSON(w, http.StatusOK, map[string]string{"override": "cleared"})

	case http.MethodGet:
		override := session.Override()
		if override == nil {
			s.respondJSON(w, http.StatusOK, simulation.DefaultParameters())
			return
		}
		s.respondJSON(w, http.StatusOK, *override)

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
