package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/hytalecompat/gameserver/internal/hostio"
	"github.com/hytalecompat/gameserver/internal/wire"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32 // AES-256
	pbkdf2Salt       = "HytaleAuthCredentialStore"

	nonceSize = 12
	tagSize   = 16

	defaultFileName = "auth.enc"
)

// recordWire is Record's JSON-on-disk shape: UUIDs render as dashed hex,
// matching plaintext field list exactly.
type recordWire struct {
	AccessToken  *string `json:"access_token,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresAt    int64   `json:"expires_at"`
	ProfileUUID  *string `json:"profile_uuid,omitempty"`
	Username     *string `json:"username,omitempty"`
	AccountUUID  *string `json:"account_uuid,omitempty"`
}

// EncryptedStore is the AES-256-GCM encrypted file credential store.
// The derivation key is computed once at construction and held for the
// store's lifetime; Zero releases it.
type EncryptedStore struct {
	fs     hostio.Filesystem
	random hostio.Random
	path   string
	key    []byte // nil if no machine identity could be resolved
}

// NewEncryptedStore derives the AES key from machineUUID (36-char dashed
// hex) via PBKDF2-HMAC-SHA-256 and builds a store rooted at path (default
// "auth.enc" in the working directory when empty). If machineUUID is
// empty, IsEncryptionAvailable reports false and Save fails with
// ErrNoEncryptionKey.
func NewEncryptedStore(fs hostio.Filesystem, random hostio.Random, path, machineUUID string) *EncryptedStore {
	if path == "" {
		path = defaultFileName
	}
	var key []byte
	if machineUUID != "" {
		key = pbkdf2.Key([]byte(machineUUID), []byte(pbkdf2Salt), pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	}
	return &EncryptedStore{fs: fs, random: random, path: path, key: key}
}

func (s *EncryptedStore) IsEncryptionAvailable() bool { return s.key != nil }

// Zero overwrites the derived key in memory and releases it.
func (s *EncryptedStore) Zero() {
	for i := range s.key {
		s.key[i] = 0
	}
	s.key = nil
}

func (s *EncryptedStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("credstore: build aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Save encrypts r as JSON and writes nonce||ciphertext||tag to the store
// path. Fails with ErrNoEncryptionKey if no key was derived.
func (s *EncryptedStore) Save(r Record) error {
	if s.key == nil {
		return ErrNoEncryptionKey
	}
	plaintext, err := json.Marshal(toWire(r))
	if err != nil {
		return fmt.Errorf("credstore: marshal record: %w", err)
	}

	aead, err := s.gcm()
	if err != nil {
		return err
	}
	nonce := make([]byte, nonceSize)
	if err := s.random.Fill(nonce); err != nil {
		return fmt.Errorf("credstore: generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)

	return s.fs.WriteFile(s.path, out, 0o600)
}

// Load reads and decrypts the store file. A missing file or a file too
// short to contain nonce+tag returns (nil, nil): there is simply no
// record yet. A tag mismatch returns (nil, error wrapping
// ErrCorruptCiphertext) — the observable signal that the file was
// produced on different hardware (a different machine UUID derives a
// different key). Callers that only care whether credentials exist can
// still treat any non-nil error the same as a nil record; callers that
// want to tell "never saved" apart from "saved but undecryptable" can
// check errors.Is(err, ErrCorruptCiphertext).
func (s *EncryptedStore) Load() (*Record, error) {
	if s.key == nil {
		return nil, nil
	}
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, nil
	}
	if len(data) < nonceSize+tagSize {
		return nil, nil
	}

	aead, err := s.gcm()
	if err != nil {
		return nil, err
	}
	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("credstore: decrypt stored record: %w", ErrCorruptCiphertext)
	}

	var w recordWire
	if err := json.Unmarshal(plaintext, &w); err != nil {
		return nil, nil
	}
	r := fromWire(w)
	return &r, nil
}

func (s *EncryptedStore) Clear() error {
	return s.fs.Remove(s.path)
}

func toWire(r Record) recordWire {
	return recordWire{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
		ProfileUUID:  uuidToHex(r.ProfileUUID),
		Username:     r.Username,
		AccountUUID:  uuidToHex(r.AccountUUID),
	}
}

func fromWire(w recordWire) Record {
	return Record{
		AccessToken:  w.AccessToken,
		RefreshToken: w.RefreshToken,
		ExpiresAt:    w.ExpiresAt,
		ProfileUUID:  hexToUUID(w.ProfileUUID),
		Username:     w.Username,
		AccountUUID:  hexToUUID(w.AccountUUID),
	}
}

func uuidToHex(u *wire.UUID) *string {
	if u == nil {
		return nil
	}
	s := wire.FormatUUID(*u)
	return &s
}

func hexToUUID(s *string) *wire.UUID {
	if s == nil {
		return nil
	}
	u, err := wire.ParseUUID(*s)
	if err != nil {
		return nil
	}
	return &u
}
