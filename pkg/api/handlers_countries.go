package api

import (
	"net/http"

	"github.com/solflu/outbreak/pkg/orchestrator"
	"github.com/solflu/outbreak/pkg/simulation"
	"github.com/solflu/outbreak/pkg/transmission"
	"github.com/solflu/outbreak/pkg/validation"
)

// handleCountries serves /api/v1/simulations/{id}/countries
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request, session *orchestrator.Session) {
	switch r.Method {
	case http.MethodGet:
		state := session.CachedState()
		response := CountryListResponse{
			Countries: state.Countries,
			Count:     len(state.Countries),
		}
		s.respondJSON(w, http.StatusOK, response)

	case http.MethodPost:
		var req validation.CountryRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateCountry(&req).RespondError() {
			return
		}

		seed := simulation.CountrySeed{
			Population: req.Population,
			Infected:   req.Infected,
			Recovered:  req.Recovered,
		}
		if req.Lat != nil && req.Lng != nil {
			seed.Location = &transmission.Point{Lat: *req.Lat, Lng: *req.Lng}
		}
		if len(req.Resistance) > 0 {
			seed.Resistance = make(map[transmission.RouteType]float64, len(req.Resistance))
			for routeType, value := range req.Resistance {
				seed.Resistance[transmission.RouteType(routeType)] = value
			}
		}

		err := session.WithModel(func(m *simulation.Model) error {
			return m.AddCountry(req.ID, seed)
		})
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		state := session.State()
		s.respondJSON(w, http.StatusCreated, map[string]any{
			"id":      req.ID,
			"country": state.Countries[req.ID],
		})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
