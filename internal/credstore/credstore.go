// Package credstore implements the credential store contract: an
// in-memory store for tests and ephemeral sessions, and an AES-256-GCM
// encrypted file store keyed by the host's machine identity for
// persistence across restarts.
package credstore

import (
	"errors"

	"github.com/hytalecompat/gameserver/internal/wire"
)

// ErrNoEncryptionKey is returned by Save when the store has no derived
// key available (the encrypted store could not resolve a machine id).
var ErrNoEncryptionKey = errors.New("credstore: no encryption key available")

// ErrCorruptCiphertext is wrapped into the error Load returns when the
// stored file exists and is long enough to hold a nonce and tag, but fails
// AEAD authentication. This is the observable signal that the file was
// produced on different hardware (a different machine UUID derives a
// different key); callers that only check for a nil record treat it the
// same as "no credentials saved", while errors.Is(err, ErrCorruptCiphertext)
// lets a caller tell the two apart.
var ErrCorruptCiphertext = errors.New("credstore: ciphertext authentication failed")

// Record is the credential record the store persists. UUID fields carry nil when
// absent, matching the wire format's optional [16]byte fields.
type Record struct {
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    int64
	ProfileUUID  *wire.UUID
	Username     *string
	AccountUUID  *wire.UUID
}

// CanRefresh reports true iff a refresh token is present.
func (r Record) CanRefresh() bool {
	return r.RefreshToken != nil
}

// AccessTokenValid reports true iff an access token is present
// and at least 300 seconds remain before its declared expiry — the same
// margin the auth manager's check_and_refresh uses to decide whether to
// refresh early.
func (r Record) AccessTokenValid(nowUnix int64) bool {
	return r.AccessToken != nil && nowUnix < r.ExpiresAt-300
}

// Store is the contract both the memory and encrypted stores satisfy.
type Store interface {
	Load() (*Record, error)
	Save(r Record) error
	Clear() error
	IsEncryptionAvailable() bool
}
