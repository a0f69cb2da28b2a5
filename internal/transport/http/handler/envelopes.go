package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendOTPEnvelope acknowledges that a passcode was issued.
type SendOTPEnvelope struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// VerifyOTPEnvelope carries the session credential minted by a verified passcode.
type VerifyOTPEnvelope struct {
	Credential string    `json:"credential"`
	Identity   string    `json:"identity"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// UserEnvelope is the public view of a user.
type UserEnvelope struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Created   time.Time  `json:"created"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
