package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solflu/outbreak/pkg/metrics"
	"github.com/solflu/outbreak/pkg/orchestrator"
)

func testServer() (*Server, http.Handler) {
	o := orchestrator.New(orchestrator.Options{
		StepInterval: time.Millisecond,
		Metrics:      metrics.NewRegistry(),
	})
	s := NewServer(o, nil, metrics.NewRegistry(), nil)
	return s, s.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(recorder.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return v
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()
	recorder := doJSON(t, handler, "POST", "/api/v1/simulations", nil)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Create session returned %d: %s", recorder.Code, recorder.Body.String())
	}
	return decode[SessionResponse](t, recorder).ID
}

func addCountry(t *testing.T, handler http.Handler, sessionID, countryID string, population, infected float64, lat, lng float64) {
	t.Helper()
	recorder := doJSON(t, handler, "POST", "/api/v1/simulations/"+sessionID+"/countries", map[string]any{
		"id":         countryID,
		"population": population,
		"infected":   infected,
		"lat":        lat,
		"lng":        lng,
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Add country returned %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestSessionCRUD(t *testing.T) {
	_, handler := testServer()

	id := createSession(t, handler)

	recorder := doJSON(t, handler, "GET", "/api/v1/simulations", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("List returned %d", recorder.Code)
	}
	list := decode[SessionListResponse](t, recorder)
	if list.Count != 1 || list.Sessions[0].ID != id {
		t.Errorf("Unexpected session list: %+v", list)
	}

	recorder = doJSON(t, handler, "GET", "/api/v1/simulations/"+id, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Get returned %d", recorder.Code)
	}

	recorder = doJSON(t, handler, "DELETE", "/api/v1/simulations/"+id, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Delete returned %d", recorder.Code)
	}

	recorder = doJSON(t, handler, "GET", "/api/v1/simulations/"+id, nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Deleted session should 404, got %d", recorder.Code)
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	_, handler := testServer()

	recorder := doJSON(t, handler, "GET", "/api/v1/simulations/no-such-id", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", recorder.Code)
	}
}

func TestAddCountryAndRoute(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)

	addCountry(t, handler, id, "US", 1_000_000, 1000, 37.1, -95.7)
	addCountry(t, handler, id, "UK", 800_000, 0, 55.4, -3.4)

	recorder := doJSON(t, handler, "GET", "/api/v1/simulations/"+id+"/countries", nil)
	countries := decode[CountryListResponse](t, recorder)
	if countries.Count != 2 {
		t.Errorf("Expected 2 countries, got %d", countries.Count)
	}

	recorder = doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/routes", map[string]any{
		"source": "US", "target": "UK", "type": "air",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Add route returned %d: %s", recorder.Code, recorder.Body.String())
	}
	route := decode[RouteResponse](t, recorder)
	if !route.Active {
		t.Error("New route with both endpoints registered should be active")
	}

	recorder = doJSON(t, handler, "GET", "/api/v1/simulations/"+id+"/routes", nil)
	routes := decode[RouteListResponse](t, recorder)
	if routes.Count != 1 {
		t.Errorf("Expected 1 route, got %d", routes.Count)
	}
}

func TestValidationErrors(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)

	// Missing population
	recorder := doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/countries", map[string]any{
		"id": "US",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing population, got %d", recorder.Code)
	}

	// Unknown route type
	recorder = doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/routes", map[string]any{
		"source": "US", "target": "UK", "type": "rail",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad route type, got %d", recorder.Code)
	}

	// Route to unregistered country
	addCountry(t, handler, id, "US", 1_000_000, 0, 37.1, -95.7)
	recorder = doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/routes", map[string]any{
		"source": "US", "target": "ZZ", "type": "air",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown target, got %d", recorder.Code)
	}

	// Malformed JSON
	req := httptest.NewRequest("POST", "/api/v1/simulations/"+id+"/countries",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestManualStepAndStats(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)
	addCountry(t, handler, id, "US", 1_000_000, 1000, 37.1, -95.7)

	recorder := doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/step", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Step returned %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doJSON(t, handler, "GET", "/api/v1/simulations/"+id+"/stats", nil)
	stats := decode[StatsResponse](t, recorder)
	if stats.GlobalStats.TotalPopulation != 1_000_000 {
		t.Errorf("TotalPopulation = %f", stats.GlobalStats.TotalPopulation)
	}
	if stats.GlobalStats.TotalInfected <= 0 {
		t.Error("Expected infected population in stats")
	}
}

func TestStartRequiresCountries(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)

	recorder := doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/start", nil)
	if recorder.Code != http.StatusConflict {
		t.Errorf("Start on empty session should 409, got %d", recorder.Code)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s, handler := testServer()
	id := createSession(t, handler)
	addCountry(t, handler, id, "US", 1_000_000, 1000, 37.1, -95.7)

	recorder := doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/start", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Start returned %d", recorder.Code)
	}

	// Manual stepping conflicts with the running loop
	recorder = doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/step", nil)
	if recorder.Code != http.StatusConflict {
		t.Errorf("Step while running should 409, got %d", recorder.Code)
	}

	time.Sleep(20 * time.Millisecond)

	recorder = doJSON(t, handler, "POST", "/api/v1/simulations/"+id+"/stop", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Stop returned %d", recorder.Code)
	}

	session, err := s.orchestrator.Session(id)
	if err != nil {
		t.Fatal(err)
	}
	if session.Steps() == 0 {
		t.Error("Loop should have stepped while running")
	}
}

func TestParameterOverride(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)

	recorder := doJSON(t, handler, "PUT", "/api/v1/simulations/"+id+"/parameters", map[string]any{
		"infection_rate":   1.5,
		"speed_multiplier": 2.0,
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Put parameters returned %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doJSON(t, handler, "GET", "/api/v1/simulations/"+id+"/parameters", nil)
	params := decode[map[string]float64](t, recorder)
	if params["infection_rate"] != 1.5 {
		t.Errorf("infection_rate = %f, want 1.5", params["infection_rate"])
	}

	// Invalid override rejected
	recorder = doJSON(t, handler, "PUT", "/api/v1/simulations/"+id+"/parameters", map[string]any{
		"recovery_rate": 5.0,
	})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Bad parameters should 400, got %d", recorder.Code)
	}

	recorder = doJSON(t, handler, "DELETE", "/api/v1/simulations/"+id+"/parameters", nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("Clear override returned %d", recorder.Code)
	}
}

func TestMonitoringEndpoints(t *testing.T) {
	_, handler := testServer()

	for _, path := range []string{"/health", "/health/ready", "/health/live", "/metrics", "/status"} {
		recorder := doJSON(t, handler, "GET", path, nil)
		if recorder.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, recorder.Code)
		}
	}

	recorder := doJSON(t, handler, "GET", "/status", nil)
	status := decode[StatusResponse](t, recorder)
	if status.Status != "ok" {
		t.Errorf("Status = %s", status.Status)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)

	recorder := doJSON(t, handler, "PUT", "/api/v1/simulations", nil)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", recorder.Code)
	}

	recorder = doJSON(t, handler, "GET", "/api/v1/simulations/"+id+"/start", nil)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET start, got %d", recorder.Code)
	}
}

func TestBodySizeLimit(t *testing.T) {
	_, handler := testServer()
	id := createSession(t, handler)

	huge := bytes.Repeat([]byte("a"), 2<<20)
	req := httptest.NewRequest("POST", "/api/v1/simulations/"+id+"/countries", bytes.NewReader(huge))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", recorder.Code)
	}
}
