package server

import (
	"context"
	"log/slog"

	"github.com/hytalecompat/gameserver/internal/asset"
	"github.com/hytalecompat/gameserver/internal/authmanager"
	"github.com/hytalecompat/gameserver/internal/frame"
)

// AuthHandler is the default Handler. It echoes KeepAlive (2), and answers
// AuthIdentityToken (11) and AuthTokenRequest (14) against a single shared
// auth manager's handshake operations. Every other packet id is logged at
// debug level and ignored; no reply is sent for it.
type AuthHandler struct {
	Manager *authmanager.Manager
	Logger  *slog.Logger
}

// NewAuthHandler builds an AuthHandler. logger defaults to slog.Default()
// when nil.
func NewAuthHandler(mgr *authmanager.Manager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{Manager: mgr, Logger: logger}
}

// HandleFrame dispatches one decoded frame. See the per-id packet names
// in internal/registry/data.go.
func (h *AuthHandler) HandleFrame(ctx context.Context, c *Conn, fr frame.Frame) error {
	switch fr.ID {
	case 2: // KeepAlive: echo the 8-byte payload back.
		return c.Send(2, fr.Payload)
	case 11: // AuthIdentityToken
		return h.handleAuthIdentityToken(c, fr)
	case 14: // AuthTokenRequest: client presents its session token for verification.
		return h.handleAuthTokenRequest(c, fr)
	default:
		h.Logger.Debug("frame ignored by auth handler", slog.Uint64("id", uint64(fr.ID)))
		return nil
	}
}

func (h *AuthHandler) handleAuthIdentityToken(c *Conn, fr frame.Frame) error {
	r := asset.NewReader(fr.Payload)
	identityToken, err := r.Varstring()
	if err != nil {
		return h.sendAuthFailure(c, "malformed identity token")
	}

	tok, err := h.Manager.HandshakeServerToken(identityToken)
	if err != nil {
		h.Logger.Warn("handshake failed", slog.String("error", err.Error()))
		return h.sendAuthFailure(c, err.Error())
	}

	w := asset.NewWriter(len(tok.AccessToken) + 4)
	w.Varstring(tok.AccessToken)
	return c.Send(17, w.Bytes()) // AuthSuccess
}

func (h *AuthHandler) handleAuthTokenRequest(c *Conn, fr frame.Frame) error {
	r := asset.NewReader(fr.Payload)
	clientToken, err := r.Varstring()
	if err != nil {
		return h.sendAuthFailure(c, "malformed auth token")
	}
	if !h.Manager.VerifyClientAuthToken(clientToken) {
		return h.sendAuthFailure(c, "auth token mismatch")
	}

	w := asset.NewWriter(4)
	w.Bool(true)
	return c.Send(15, w.Bytes()) // AuthTokenResponse
}

func (h *AuthHandler) sendAuthFailure(c *Conn, reason string) error {
	w := asset.NewWriter(len(reason) + 4)
	w.Varstring(reason)
	return c.Send(16, w.Bytes()) // AuthFailure
}
