// Package authmanager implements the auth state machine: it orchestrates
// the device-flow client (oauth), the session service client (session),
// and the credential store (credstore) into a single state machine; the
// machine identity (machineid) that keys an encrypted store is resolved by
// the caller that builds the store. A Manager is single-owned; concurrent callers
// must serialize externally.
package authmanager

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hytalecompat/gameserver/internal/credstore"
	"github.com/hytalecompat/gameserver/internal/hostio"
	"github.com/hytalecompat/gameserver/internal/oauth"
	"github.com/hytalecompat/gameserver/internal/session"
	"github.com/hytalecompat/gameserver/internal/wire"
)

// State is the auth state machine's current state.
type State int

const (
	StateIdle State = iota
	StateAwaitingUser
	StatePolling
	StateFetchingProfiles
	StateAwaitingProfileSelection
	StateCreatingSession
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingUser:
		return "awaiting_user"
	case StatePolling:
		return "polling"
	case StateFetchingProfiles:
		return "fetching_profiles"
	case StateAwaitingProfileSelection:
		return "awaiting_profile_selection"
	case StateCreatingSession:
		return "creating_session"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode identifies how the manager reached (or will reach) authenticated.
type Mode int

const (
	ModeNone Mode = iota
	ModeSingleplayer
	ModeExternalSession
	ModeOAuthDevice
	ModeOAuthStore
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSingleplayer:
		return "singleplayer"
	case ModeExternalSession:
		return "external_session"
	case ModeOAuthDevice:
		return "oauth_device"
	case ModeOAuthStore:
		return "oauth_store"
	default:
		return "unknown"
	}
}

// ErrorKind is the state-machine layer's own error taxonomy, wrapping
// whatever oauth/session/credstore kind triggered the transition to
// failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindExpired
	KindDenied
	KindInvalidGrant
	KindInvalidRequest
	KindNetworkError
	KindAuthenticationFailed
	KindServiceError
	KindConnectionFailed
	KindInvalidResponse
	KindNoProfiles
	KindNoEncryptionKey
)

func (k ErrorKind) String() string {
	switch k {
	case KindExpired:
		return "expired"
	case KindDenied:
		return "denied"
	case KindInvalidGrant:
		return "invalid_grant"
	case KindInvalidRequest:
		return "invalid_request"
	case KindNetworkError:
		return "network_error"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindServiceError:
		return "service_error"
	case KindConnectionFailed:
		return "connection_failed"
	case KindInvalidResponse:
		return "invalid_response"
	case KindNoProfiles:
		return "no_profiles"
	case KindNoEncryptionKey:
		return "no_encryption_key"
	default:
		return "none"
	}
}

// Error is what a failed state carries: a taxonomy kind plus a
// human-readable message translated from whichever lower layer raised it.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("authmanager: %s: %s", e.Kind, e.Message) }

// refreshMarginSeconds is the 300-second early-refresh window invariant
// AccessTokenValid and check_and_refresh both use.
const refreshMarginSeconds = 300

// MetricsRecorder is the narrow seam a Prometheus collector satisfies;
// kept as a local interface so this package doesn't import
// internal/metrics directly. Nil-safe: a Manager with no recorder simply
// skips the call.
type MetricsRecorder interface {
	RecordAuthTransition(from, to string)
}

// Snapshot is a read-only view of the manager's current state, for a
// metrics collector or a CLI's "status" command — reporting without
// mutating anything.
type Snapshot struct {
	State        State
	Mode         Mode
	ProfileUUID  string
	Username     string
	LastError    string
	Profiles     []session.Profile
}

// Manager is the authentication state machine. Not safe for concurrent
// use.
type Manager struct {
	oauthClient   *oauth.Client
	sessionClient *session.Client
	store         credstore.Store
	clock         hostio.Clock
	logger        *slog.Logger

	serverCertFingerprint string
	serverAudience        string
	metrics               MetricsRecorder

	state State
	mode  Mode
	err   *Error

	profiles     []session.Profile
	profileUUID  string
	username     string

	accessToken  string
	refreshToken string
	identityToken string
	expiresAt    int64 // unix seconds, access token expiry

	gameSession session.GameSession
}

// New builds a Manager. logger defaults to slog.Default() when nil.
func New(oauthClient *oauth.Client, sessionClient *session.Client, store credstore.Store, clock hostio.Clock, serverCertFingerprint, serverAudience string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		oauthClient:           oauthClient,
		sessionClient:         sessionClient,
		store:                 store,
		clock:                 clock,
		logger:                logger,
		serverCertFingerprint: serverCertFingerprint,
		serverAudience:        serverAudience,
		state:                 StateIdle,
		mode:                  ModeNone,
	}
}

func (m *Manager) transition(to State) {
	m.logger.Debug("authmanager transition", slog.String("from", m.state.String()), slog.String("to", to.String()))
	if m.metrics != nil {
		m.metrics.RecordAuthTransition(m.state.String(), to.String())
	}
	m.state = to
}

// SetMetrics attaches a metrics recorder. Safe to call at any time,
// including before any transitions have occurred.
func (m *Manager) SetMetrics(recorder MetricsRecorder) {
	m.metrics = recorder
}

func (m *Manager) fail(kind ErrorKind, message string) error {
	m.err = &Error{Kind: kind, Message: message}
	m.transition(StateFailed)
	m.logger.Warn("authmanager failed", slog.String("kind", kind.String()), slog.String("message", message))
	return m.err
}

// Snapshot returns a read-only copy of the manager's current state.
func (m *Manager) Snapshot() Snapshot {
	lastErr := ""
	if m.err != nil {
		lastErr = m.err.Error()
	}
	return Snapshot{
		State:       m.state,
		Mode:        m.mode,
		ProfileUUID: m.profileUUID,
		Username:    m.username,
		LastError:   lastErr,
		Profiles:    append([]session.Profile(nil), m.profiles...),
	}
}

// StartDeviceFlow begins the OAuth device authorization grant (idle ->
// awaiting_user -> polling). Returns the user code and verification URI
// for display.
func (m *Manager) StartDeviceFlow() (userCode, verificationURI string, err error) {
	m.transition(StateAwaitingUser)
	userCode, verificationURI, startErr := m.oauthClient.StartDeviceAuthorization()
	if startErr != nil {
		return "", "", m.fail(translateOAuthErr(startErr), startErr.Error())
	}
	m.mode = ModeOAuthDevice
	m.transition(StatePolling)
	return userCode, verificationURI, nil
}

// PollOnce performs a single device-code poll. While the authorization is
// still pending (a transient condition), the manager stays in polling and
// returns nil with ok=false. A terminal error transitions to failed.
// On success the manager advances to fetching_profiles and fetches them.
func (m *Manager) PollOnce() (ok bool, err error) {
	if m.state != StatePolling {
		return false, fmt.Errorf("authmanager: poll called outside polling state (state=%s)", m.state)
	}
	tv, pollErr := m.oauthClient.PollForToken()
	if pollErr != nil {
		oe, isOAuthErr := pollErr.(*oauth.Error)
		if isOAuthErr && oe.Kind.IsTransient() {
			return false, nil
		}
		return false, m.fail(translateOAuthErr(pollErr), pollErr.Error())
	}

	m.accessToken = m.oauthClient.AccessToken
	m.refreshToken = tv.RefreshToken
	m.identityToken = m.oauthClient.IDToken
	m.expiresAt = m.oauthClient.ExpiresAt.Unix()

	m.transition(StateFetchingProfiles)
	return true, m.fetchProfilesAndAdvance()
}

// fetchProfilesAndAdvance fetches profiles and auto-selects when exactly
// one profile is returned, or surfaces awaiting_profile_selection
// otherwise.
func (m *Manager) fetchProfilesAndAdvance() error {
	list, err := m.sessionClient.GetGameProfiles(m.accessToken)
	if err != nil {
		return m.fail(translateSessionErr(err), err.Error())
	}
	m.profiles = list.Profiles
	if len(list.Profiles) == 0 {
		return m.fail(KindNoProfiles, "account has no game profiles")
	}
	if len(list.Profiles) == 1 {
		return m.SelectProfile(list.Profiles[0].UUID)
	}
	m.transition(StateAwaitingProfileSelection)
	return nil
}

// SelectProfile chooses a profile from the fetched list and advances to
// creating_session, minting a game session for it.
func (m *Manager) SelectProfile(profileUUID string) error {
	if m.state != StateFetchingProfiles && m.state != StateAwaitingProfileSelection {
		return fmt.Errorf("authmanager: select_profile called outside a profile-selection state (state=%s)", m.state)
	}
	var chosen *session.Profile
	for i := range m.profiles {
		if m.profiles[i].UUID == profileUUID {
			chosen = &m.profiles[i]
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("authmanager: profile %q not in fetched list", profileUUID)
	}
	m.profileUUID = chosen.UUID
	m.username = chosen.Username
	m.transition(StateCreatingSession)
	return m.createGameSession()
}

func (m *Manager) createGameSession() error {
	gs, err := m.sessionClient.CreateGameSession(m.accessToken, m.profileUUID)
	if err != nil {
		return m.fail(translateSessionErr(err), err.Error())
	}
	m.gameSession = gs
	m.transition(StateAuthenticated)
	return m.persist()
}

func (m *Manager) persist() error {
	rec := credstore.Record{
		AccessToken:  strPtr(m.accessToken),
		RefreshToken: strPtr(m.refreshToken),
		ExpiresAt:    m.expiresAt,
		Username:     strPtr(m.username),
	}
	if u, err := wire.ParseUUID(m.profileUUID); err == nil {
		rec.ProfileUUID = &u
	}
	if err := m.store.Save(rec); err != nil {
		m.logger.Warn("authmanager: credential persist failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// CheckAndRefresh implements check_and_refresh(): if the access token
// expires within refreshMarginSeconds, refreshes via OAuth, re-mints the
// game session, and persists. A no-op for singleplayer/external-session
// modes and whenever the manager isn't authenticated.
func (m *Manager) CheckAndRefresh() error {
	if m.mode != ModeOAuthDevice && m.mode != ModeOAuthStore {
		return nil
	}
	if m.state != StateAuthenticated {
		return nil
	}
	now := m.clock.Now().Unix()
	if m.expiresAt-now > refreshMarginSeconds {
		return nil
	}

	tv, err := m.oauthClient.RefreshToken(m.refreshToken)
	if err != nil {
		return m.fail(translateOAuthErr(err), err.Error())
	}
	m.accessToken = tv.AccessToken
	m.refreshToken = tv.RefreshToken
	m.identityToken = tv.IDToken
	m.expiresAt = tv.ExpiresAt.Unix()

	gs, err := m.sessionClient.CreateGameSession(m.accessToken, m.profileUUID)
	if err != nil {
		return m.fail(translateSessionErr(err), err.Error())
	}
	m.gameSession = gs
	return m.persist()
}

// InitializeFromStore implements initialize_from_store(): restores a
// persisted record, refreshing first if its access token has expired,
// then fetches profiles. A unique match against the stored profile_uuid
// auto-selects and authenticates with mode oauth_store; otherwise the
// manager surfaces awaiting_profile_selection.
func (m *Manager) InitializeFromStore() error {
	rec, err := m.store.Load()
	if errors.Is(err, credstore.ErrCorruptCiphertext) {
		m.logger.Warn("stored credentials failed decryption, treating as absent", slog.String("error", err.Error()))
		return nil
	}
	if err != nil {
		return m.fail(KindServiceError, err.Error())
	}
	if rec == nil {
		return nil
	}

	m.mode = ModeOAuthStore
	now := m.clock.Now().Unix()
	if rec.AccessToken != nil {
		m.accessToken = *rec.AccessToken
	}
	if rec.RefreshToken != nil {
		m.refreshToken = *rec.RefreshToken
	}
	m.expiresAt = rec.ExpiresAt

	if rec.CanRefresh() && !rec.AccessTokenValid(now) {
		tv, err := m.oauthClient.RefreshToken(m.refreshToken)
		if err != nil {
			return m.fail(translateOAuthErr(err), err.Error())
		}
		m.accessToken = tv.AccessToken
		m.refreshToken = tv.RefreshToken
		m.identityToken = tv.IDToken
		m.expiresAt = tv.ExpiresAt.Unix()
	}

	m.transition(StateFetchingProfiles)
	list, err := m.sessionClient.GetGameProfiles(m.accessToken)
	if err != nil {
		return m.fail(translateSessionErr(err), err.Error())
	}
	m.profiles = list.Profiles

	storedUUID := ""
	if rec.ProfileUUID != nil {
		storedUUID = wire.FormatUUID(*rec.ProfileUUID)
	}
	var matches []session.Profile
	for _, p := range list.Profiles {
		if p.UUID == storedUUID {
			matches = append(matches, p)
		}
	}
	if storedUUID != "" && len(matches) == 1 {
		return m.SelectProfile(matches[0].UUID)
	}
	m.transition(StateAwaitingProfileSelection)
	return nil
}

// UseSingleplayer and UseExternalSession let a caller bypass the OAuth
// pipeline entirely, for modes alongside oauth_device and oauth_store;
// neither participates in refresh.
func (m *Manager) UseSingleplayer() {
	m.mode = ModeSingleplayer
	m.transition(StateAuthenticated)
}

func (m *Manager) UseExternalSession(sessionToken, identityToken string) {
	m.mode = ModeExternalSession
	m.gameSession.SessionToken = sessionToken
	m.identityToken = identityToken
	m.transition(StateAuthenticated)
}

// HandshakeServerToken implements the handshake operation: it presents a
// client-supplied identity token and the server's own cert fingerprint to
// the session service, yielding a short-lived server-bound access token.
func (m *Manager) HandshakeServerToken(clientIdentityToken string) (session.ServerAccessToken, error) {
	grant, err := m.sessionClient.RequestAuthGrant(m.accessToken, clientIdentityToken, m.serverAudience)
	if err != nil {
		return session.ServerAccessToken{}, m.fail(translateSessionErr(err), err.Error())
	}
	tok, err := m.sessionClient.ExchangeAuthGrant(m.accessToken, grant.AuthorizationGrant, m.serverCertFingerprint)
	if err != nil {
		return session.ServerAccessToken{}, m.fail(translateSessionErr(err), err.Error())
	}
	return tok, nil
}

// VerifyClientAuthToken compares a client-presented auth token against
// the current session token using constant-time equality.
func (m *Manager) VerifyClientAuthToken(clientToken string) bool {
	want := []byte(m.gameSession.SessionToken)
	got := []byte(clientToken)
	if len(want) != len(got) {
		return false
	}
	return subtle.ConstantTimeCompare(want, got) == 1
}

// Reset returns the manager to idle, clearing all in-memory credential
// state. Both authenticated and failed are re-enterable after Reset.
func (m *Manager) Reset() {
	m.state = StateIdle
	m.mode = ModeNone
	m.err = nil
	m.profiles = nil
	m.profileUUID = ""
	m.username = ""
	m.accessToken = ""
	m.refreshToken = ""
	m.identityToken = ""
	m.expiresAt = 0
	m.gameSession = session.GameSession{}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func translateOAuthErr(err error) ErrorKind {
	oe, ok := err.(*oauth.Error)
	if !ok {
		return KindNetworkError
	}
	switch oe.Kind {
	case oauth.KindExpired:
		return KindExpired
	case oauth.KindDenied:
		return KindDenied
	case oauth.KindInvalidGrant:
		return KindInvalidGrant
	case oauth.KindNetworkError:
		return KindNetworkError
	default:
		return KindInvalidRequest
	}
}

func translateSessionErr(err error) ErrorKind {
	se, ok := err.(*session.Error)
	if !ok {
		return KindConnectionFailed
	}
	switch se.Kind {
	case session.KindAuthenticationFailed:
		return KindAuthenticationFailed
	case session.KindServiceError:
		return KindServiceError
	case session.KindConnectionFailed:
		return KindConnectionFailed
	default:
		return KindInvalidResponse
	}
}
