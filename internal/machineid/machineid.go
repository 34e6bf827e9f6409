// Package machineid resolves a stable per-host identity: the machine UUID
// the credential store's key derivation uses as its PBKDF2 password.
// Resolution prefers the platform's own machine id file and falls back to
// a locally generated and persisted one, so the identity survives process
// restarts without depending on any platform-specific file existing.
package machineid

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"

	"github.com/hytalecompat/gameserver/internal/hostio"
	"github.com/hytalecompat/gameserver/internal/wire"
)

const fallbackFileName = ".machine_id"

var linuxMachineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// Resolver resolves and persists the machine identity.
type Resolver struct {
	fs       hostio.Filesystem
	random   hostio.Random
	fallback string // path to the fallback .machine_id file
}

// NewResolver builds a Resolver. fallbackPath defaults to ".machine_id" in
// the process working directory when empty.
func NewResolver(fs hostio.Filesystem, random hostio.Random, fallbackPath string) *Resolver {
	if fallbackPath == "" {
		fallbackPath = fallbackFileName
	}
	return &Resolver{fs: fs, random: random, fallback: fallbackPath}
}

// Resolve returns the canonical dashed-hex machine UUID, generating and
// persisting a fallback identity on first use if the platform offers no
// machine id of its own.
func (r *Resolver) Resolve() (string, error) {
	if id, ok := r.platformMachineID(); ok {
		return id, nil
	}
	return r.fallbackMachineID()
}

// platformMachineID implements the (a) resolution step: Linux reads
// /etc/machine-id then /var/lib/dbus/machine-id as 32 hex chars; macOS is
// reserved for an IOKit-backed identity and currently returns none; every
// other platform returns none.
func (r *Resolver) platformMachineID() (string, bool) {
	if runtime.GOOS != "linux" {
		return "", false
	}
	for _, path := range linuxMachineIDPaths {
		data, err := r.fs.ReadFile(path)
		if err != nil {
			continue
		}
		hexID := strings.TrimSpace(string(data))
		if len(hexID) != 32 {
			continue
		}
		if _, err := hex.DecodeString(hexID); err != nil {
			continue
		}
		return formatDashedHex(hexID), true
	}
	return "", false
}

// fallbackMachineID implements the (b) resolution step: read 16 raw bytes
// from the fallback file, or generate and persist them on first run.
func (r *Resolver) fallbackMachineID() (string, error) {
	data, err := r.fs.ReadFile(r.fallback)
	if err == nil && len(data) == 16 {
		return FormatUUID(data), nil
	}

	id := make([]byte, 16)
	if err := r.random.Fill(id); err != nil {
		return "", fmt.Errorf("machineid: generate fallback id: %w", err)
	}
	if err := r.fs.WriteFile(r.fallback, id, 0o600); err != nil {
		return "", fmt.Errorf("machineid: persist fallback id: %w", err)
	}
	return FormatUUID(id), nil
}

// FormatUUID renders 16 raw bytes as canonical dashed hex
// (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx).
func FormatUUID(b []byte) string {
	var u wire.UUID
	copy(u[:], b)
	return wire.FormatUUID(u)
}

// formatDashedHex renders a 32-char bare hex string (as found in
// /etc/machine-id) as canonical dashed hex.
func formatDashedHex(hexID string) string {
	u, err := wire.ParseUUID(hexID)
	if err != nil {
		return hexID
	}
	return wire.FormatUUID(u)
}
