package session

import "time"

// CreateRequest defines the payload for creating a new tutoring session.
type CreateRequest struct {
	ProfileID string `json:"profile_id"`
}

// CreateResponse returns created session metadata.
type CreateResponse struct {
	SessionID       string    `json:"session_id"`
	ProfileID       string    `json:"profile_id"`
	Status          Status    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}
