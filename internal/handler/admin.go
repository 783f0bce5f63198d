package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

// login checks the admin credentials. It issues no token; callers only
// learn whether the credentials are valid.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if h.cfg.AdminEmail == "" || h.cfg.AdminPasswordHash == "" {
		writeFailure(w, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	var req wire.LoginRequest
	if err := readJSON(w, r, req.Decode); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	// Both comparisons always run so response time does not reveal which
	// one failed.
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(req.Email))),
		[]byte(strings.ToLower(h.cfg.AdminEmail)),
	) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password))

	if !emailOK || passErr != nil {
		zctx.From(r.Context()).Warn("Admin login rejected", zap.Bool("email_match", emailOK))
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeData(w, http.StatusOK, "Login successful", nil)
}
