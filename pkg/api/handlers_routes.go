package api

import (
	"fmt"
	"net/http"

	"github.com/solflu/outbreak/pkg/orchestrator"
	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/transmission"
	"github.com/solflu/outbreak/pkg/validation"
)

// handleRoutes serves /api/v1/simulations/{id}/routes
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	switch r.Method {
	case http.MethodGet:
		var routes []RouteResponse
		session.WithModel(func(m *simulation.Model) error {
			for _, route := range m.Network().Routes() {
				routes = append(routes, RouteResponse{
					Source: route.Source,
					Target: route.Target,
					Type:   string(route.Type),
					Active: route.Active,
				})
			}
			return nil
		})
		s.respondJSON(w, http.StatusOK, RouteListResponse{
			Routes: routes,
			Count:  len(routes),
		})

	case http.MethodPost:
		var req validation.RouteRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateRoute(&req).RespondError() {
			return
		}

		added := false
		session.WithModel(func(m *simulation.Model) error {
			added = m.AddRoute(req.Source, req.Target, transmission.RouteType(req.Type))
			return nil
		})
		if !added {
			s.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("Route %s-%s rejected: unknown country or duplicate", req.Source, req.Target))
			return
		}

		s.respondJSON(w, http.StatusCreated, RouteResponse{
			Source: req.Source,
			Target: req.Target,
			Type:   req.Type,
			Active: true,
		})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
