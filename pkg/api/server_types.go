package api

import (
	"time"

	"github.com/solflu/outbreak/pkg/simulation"
)

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SessionResponse summarizes one simulation session
type SessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Running   bool      `json:"running"`
	Steps     uint64    `json:"steps"`
	Countries int       `json:"countries"`
}

// SessionListResponse lists all sessions
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

// CountryListResponse lists the countries of a session
type CountryListResponse struct {
	Countries map[string]simulation.CountrySnapshot `json:"countries"`
	Count     int                                   `json:"count"`
}

// RouteResponse describes one transmission route
type RouteResponse struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// RouteListResponse lists the routes of a session
type RouteListResponse struct {
	Routes []RouteResponse `json:"routes"`
	Count  int             `json:"count"`
}

// StatsResponse carries global statistics plus mutation summary
type StatsResponse struct {
	GlobalStats simulation.GlobalStats `json:"global_stats"`
	Strain      int                    `json:"strain"`
	Mutations   int                    `json:"mutations"`
}

// StatusResponse reports server build and uptime information
type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}
