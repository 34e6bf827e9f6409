package authmanager

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/hytalecompat/gameserver/internal/credstore"
	"github.com/hytalecompat/gameserver/internal/oauth"
	"github.com/hytalecompat/gameserver/internal/session"
	"github.com/hytalecompat/gameserver/internal/wire"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

// routedHTTPClient answers by exact URL match, letting one fake stand in
// for both the oauth and session endpoints a manager wires together.
type routedHTTPClient struct {
	byURL map[string]string
}

func (f *routedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	body := f.byURL[req.URL.String()]
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}, nil
}

func newManager(httpClient *routedHTTPClient, clock fakeClock, store credstore.Store) *Manager {
	oc := oauth.NewClient(httpClient, clock, "", "", "", "")
	sc := session.NewClient(httpClient, "", "")
	return New(oc, sc, store, clock, "fingerprint-abc", "hytale-game-server", nil)
}

func TestFullOAuthDeviceFlowSingleProfile(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{
		"https://oauth.accounts.hytale.com/oauth2/device/auth": `{"device_code":"dc1","user_code":"ABCD-EFGH","verification_uri":"https://example.com/verify","expires_in":600,"interval":5}`,
		"https://oauth.accounts.hytale.com/oauth2/token":        `{"access_token":"at1","refresh_token":"rt1","id_token":"idt1","expires_in":3600}`,
		"https://account-data.hytale.com/my-account/get-profiles": `{"owner":"acct1","profiles":[{"uuid":"11111111-1111-1111-1111-111111111111","username":"Steve"}]}`,
		"https://sessions.hytale.com/game-session/new":           `{"sessionToken":"st1","identityToken":"it1","expiresAt":"1970-01-01T00:00:00Z"}`,
	}}
	store := credstore.NewMemoryStore()
	m := newManager(httpClient, fakeClock{now: time.Unix(1000, 0)}, store)

	userCode, uri, err := m.StartDeviceFlow()
	if err != nil {
		t.Fatal(err)
	}
	if userCode != "ABCD-EFGH" || uri != "https://example.com/verify" {
		t.Fatalf("got %q %q", userCode, uri)
	}
	if m.Snapshot().State != StatePolling {
		t.Fatalf("state = %v, want polling", m.Snapshot().State)
	}

	ok, err := m.PollOnce()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected poll to succeed")
	}

	snap := m.Snapshot()
	if snap.State != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", snap.State)
	}
	if snap.Mode != ModeOAuthDevice {
		t.Fatalf("mode = %v, want oauth_device", snap.Mode)
	}
	if snap.Username != "Steve" {
		t.Fatalf("username = %q", snap.Username)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || *loaded.AccessToken != "at1" {
		t.Fatalf("expected persisted record, got %+v", loaded)
	}
}

func TestPollOnceStaysInPollingWhilePending(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{
		"https://oauth.accounts.hytale.com/oauth2/device/auth": `{"device_code":"dc1","user_code":"ABCD-EFGH","verification_uri":"https://example.com/verify","expires_in":600,"interval":5}`,
		"https://oauth.accounts.hytale.com/oauth2/token":        `{"error":"authorization_pending"}`,
	}}
	m := newManager(httpClient, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	if _, _, err := m.StartDeviceFlow(); err != nil {
		t.Fatal(err)
	}

	ok, err := m.PollOnce()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected pending poll to report not-ok")
	}
	if m.Snapshot().State != StatePolling {
		t.Fatalf("state = %v, want polling to remain unchanged", m.Snapshot().State)
	}
}

func TestPollOnceExpiredTransitionsToFailed(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{
		"https://oauth.accounts.hytale.com/oauth2/device/auth": `{"device_code":"dc1","user_code":"ABCD-EFGH","verification_uri":"https://example.com/verify","expires_in":600,"interval":5}`,
		"https://oauth.accounts.hytale.com/oauth2/token":        `{"error":"expired_token"}`,
	}}
	m := newManager(httpClient, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	m.StartDeviceFlow()

	if _, err := m.PollOnce(); err == nil {
		t.Fatal("expected error")
	}
	snap := m.Snapshot()
	if snap.State != StateFailed {
		t.Fatalf("state = %v, want failed", snap.State)
	}
	if snap.LastError == "" {
		t.Fatal("expected a recorded error message")
	}
}

func TestMultipleProfilesRequiresSelection(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{
		"https://oauth.accounts.hytale.com/oauth2/device/auth": `{"device_code":"dc1","user_code":"ABCD-EFGH","verification_uri":"https://example.com/verify","expires_in":600,"interval":5}`,
		"https://oauth.accounts.hytale.com/oauth2/token":        `{"access_token":"at1","refresh_token":"rt1","expires_in":3600}`,
		"https://account-data.hytale.com/my-account/get-profiles": `{"owner":"acct1","profiles":[{"uuid":"11111111-1111-1111-1111-111111111111","username":"Steve"},{"uuid":"22222222-2222-2222-2222-222222222222","username":"Alex"}]}`,
		"https://sessions.hytale.com/game-session/new":           `{"sessionToken":"st1","identityToken":"it1","expiresAt":"1970-01-01T00:00:00Z"}`,
	}}
	m := newManager(httpClient, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	m.StartDeviceFlow()
	m.PollOnce()

	snap := m.Snapshot()
	if snap.State != StateAwaitingProfileSelection {
		t.Fatalf("state = %v, want awaiting_profile_selection", snap.State)
	}
	if len(snap.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(snap.Profiles))
	}

	if err := m.SelectProfile("22222222-2222-2222-2222-222222222222"); err != nil {
		t.Fatal(err)
	}
	snap = m.Snapshot()
	if snap.State != StateAuthenticated || snap.Username != "Alex" {
		t.Fatalf("got %+v", snap)
	}
}

func TestCheckAndRefreshSkipsWellBeforeExpiry(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{}}
	m := newManager(httpClient, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	m.mode = ModeOAuthDevice
	m.state = StateAuthenticated
	m.expiresAt = 10000

	if err := m.CheckAndRefresh(); err != nil {
		t.Fatal(err)
	}
	if m.accessToken != "" {
		t.Fatal("expected no refresh to have occurred")
	}
}

func TestCheckAndRefreshWithinMarginRefreshesAndPersists(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{
		"https://oauth.accounts.hytale.com/oauth2/token": `{"access_token":"at-new","refresh_token":"rt-new","expires_in":3600}`,
		"https://sessions.hytale.com/game-session/new":   `{"sessionToken":"st2","identityToken":"it2","expiresAt":"1970-01-01T00:00:00Z"}`,
	}}
	store := credstore.NewMemoryStore()
	m := newManager(httpClient, fakeClock{now: time.Unix(1000, 0)}, store)
	m.mode = ModeOAuthDevice
	m.state = StateAuthenticated
	m.refreshToken = "rt-old"
	m.profileUUID = "11111111-1111-1111-1111-111111111111"
	m.expiresAt = 1100 // within the 300s margin of now=1000

	if err := m.CheckAndRefresh(); err != nil {
		t.Fatal(err)
	}
	if m.accessToken != "at-new" {
		t.Fatalf("access token = %q", m.accessToken)
	}
	loaded, _ := store.Load()
	if loaded == nil || *loaded.AccessToken != "at-new" {
		t.Fatalf("expected refreshed token persisted, got %+v", loaded)
	}
}

func TestCheckAndRefreshSkipsSingleplayer(t *testing.T) {
	m := newManager(&routedHTTPClient{byURL: map[string]string{}}, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	m.UseSingleplayer()
	m.expiresAt = 1 // would trigger refresh if mode were oauth

	if err := m.CheckAndRefresh(); err != nil {
		t.Fatal(err)
	}
}

func TestInitializeFromStoreAutoSelectsUniqueMatch(t *testing.T) {
	httpClient := &routedHTTPClient{byURL: map[string]string{
		"https://account-data.hytale.com/my-account/get-profiles": `{"owner":"acct1","profiles":[{"uuid":"11111111-1111-1111-1111-111111111111","username":"Steve"}]}`,
		"https://sessions.hytale.com/game-session/new":            `{"sessionToken":"st1","identityToken":"it1","expiresAt":"1970-01-01T00:00:00Z"}`,
	}}
	store := credstore.NewMemoryStore()
	profileUUID, err := wire.ParseUUID("11111111-1111-1111-1111-111111111111")
	if err != nil {
		t.Fatal(err)
	}
	store.Save(credstore.Record{
		AccessToken:  strp("at1"),
		RefreshToken: strp("rt1"),
		ExpiresAt:    100000,
		ProfileUUID:  &profileUUID,
	})

	m := newManager(httpClient, fakeClock{now: time.Unix(0, 0)}, store)
	if err := m.InitializeFromStore(); err != nil {
		t.Fatal(err)
	}
	snap := m.Snapshot()
	if snap.State != StateAuthenticated || snap.Mode != ModeOAuthStore {
		t.Fatalf("got %+v", snap)
	}
}

func TestInitializeFromStoreEmptyIsNoop(t *testing.T) {
	m := newManager(&routedHTTPClient{byURL: map[string]string{}}, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	if err := m.InitializeFromStore(); err != nil {
		t.Fatal(err)
	}
	if m.Snapshot().State != StateIdle {
		t.Fatalf("state = %v, want idle", m.Snapshot().State)
	}
}

type corruptCiphertextStore struct{}

func (corruptCiphertextStore) Load() (*credstore.Record, error) {
	return nil, fmt.Errorf("credstore: decrypt stored record: %w", credstore.ErrCorruptCiphertext)
}
func (corruptCiphertextStore) Save(credstore.Record) error { return nil }
func (corruptCiphertextStore) Clear() error                { return nil }
func (corruptCiphertextStore) IsEncryptionAvailable() bool  { return true }

func TestInitializeFromStoreTreatsCorruptCiphertextAsAbsent(t *testing.T) {
	m := newManager(&routedHTTPClient{byURL: map[string]string{}}, fakeClock{now: time.Unix(0, 0)}, corruptCiphertextStore{})
	if err := m.InitializeFromStore(); err != nil {
		t.Fatal(err)
	}
	if m.Snapshot().State != StateIdle {
		t.Fatalf("state = %v, want idle", m.Snapshot().State)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	m := newManager(&routedHTTPClient{byURL: map[string]string{}}, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	m.UseSingleplayer()
	m.Reset()
	snap := m.Snapshot()
	if snap.State != StateIdle || snap.Mode != ModeNone {
		t.Fatalf("got %+v", snap)
	}
}

func TestVerifyClientAuthTokenMatchesAndMismatches(t *testing.T) {
	m := newManager(&routedHTTPClient{byURL: map[string]string{}}, fakeClock{now: time.Unix(0, 0)}, credstore.NewMemoryStore())
	m.gameSession = session.GameSession{SessionToken: "tok-1"}

	if !m.VerifyClientAuthToken("tok-1") {
		t.Fatal("expected matching token to verify")
	}
	if m.VerifyClientAuthToken("tok-2") {
		t.Fatal("expected mismatched token to fail")
	}
	if m.VerifyClientAuthToken("") {
		t.Fatal("expected empty token to fail against a non-empty session token")
	}
}

func strp(s string) *string { return &s }
