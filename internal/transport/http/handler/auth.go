package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/application/session"
	"github.com/go-otp-auth/internal/transport/http/middleware"
)

const maxBodyBytes = 64 << 10

// AuthHandler handles the passcode login endpoints.
type AuthHandler struct {
	svc      auth.Service
	sessions session.Service
}

func NewAuthHandler(svc auth.Service, sessions session.Service) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.StartLoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.StartLogin(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendOTPEnvelope{Accepted: true, Message: "OTP sent"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.CompleteLoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.CompleteLogin(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyOTPEnvelope{
		Credential: res.Credential,
		Identity:   res.Identity,
		ExpiresAt:  res.ExpiresAt,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.sessions.Current(r.Context(), claims)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{
		ID:        u.UserID,
		Email:     u.Email,
		Created:   u.CreatedAt,
		LastLogin: u.LastLoginAt,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
