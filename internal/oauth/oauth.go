// Package oauth implements the OAuth 2.0 Device Authorization Grant
// (RFC 8628) client used to obtain game-server credentials: device
// authorization, token polling with the RFC's error taxonomy, and
// refresh-token exchange. All HTTP traffic goes through hostio.HTTPClient
// and all expiry math through hostio.Clock, so this package never touches
// net/http.DefaultClient or time.Now directly.
package oauth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hytalecompat/gameserver/internal/hostio"
)

// ErrorKind enumerates the RFC 8628 device-flow error taxonomy plus the
// transport/parse failures this client can surface.
type ErrorKind int

const (
	KindPending ErrorKind = iota
	KindSlowDown
	KindExpired
	KindDenied
	KindInvalidRequest
	KindInvalidGrant
	KindNetworkError
	KindParseError
)

func (k ErrorKind) String() string {
	switch k {
	case KindPending:
		return "pending"
	case KindSlowDown:
		return "slow_down"
	case KindExpired:
		return "expired"
	case KindDenied:
		return "denied"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInvalidGrant:
		return "invalid_grant"
	case KindNetworkError:
		return "network_error"
	case KindParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Error carries an ErrorKind so callers (the auth state machine in
// particular) can switch on
// the taxonomy without string matching.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("oauth: %s: %s", e.Kind, e.Message) }

// IsTransient reports whether kind means "try again", not "give up" —
// Pending/SlowDown are transient; everything else in the device-flow
// taxonomy is terminal.
func (k ErrorKind) IsTransient() bool {
	return k == KindPending || k == KindSlowDown
}

const (
	defaultClientID = "hytale-server"
	defaultScope    = "openid+offline+auth:server"

	defaultDeviceURL = "https://oauth.accounts.hytale.com/oauth2/device/auth"
	defaultTokenURL  = "https://oauth.accounts.hytale.com/oauth2/token"

	grantTypeDeviceCode  = "urn:ietf:params:oauth:grant-type:device_code"
	grantTypeRefreshToken = "refresh_token"
)

// TokenView is the caller-facing result of a successful poll or refresh.
type TokenView struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresAt    time.Time
}

// Client holds device-flow state across start/poll/refresh calls. A Client
// is not safe for concurrent use; serializing calls is the caller's
// responsibility.
type Client struct {
	http  hostio.HTTPClient
	clock hostio.Clock

	clientID string
	scope    string
	deviceURL string
	tokenURL  string

	DeviceCode       string
	UserCode         string
	VerificationURI  string
	PollInterval     time.Duration
	ExpiresAt        time.Time
	AccessToken      string
	refreshToken     string
	IDToken          string
}

// NewClient builds a device-flow client. deviceURL/tokenURL/clientID/scope
// fall back to the production endpoints when empty.
func NewClient(httpClient hostio.HTTPClient, clock hostio.Clock, clientID, scope, deviceURL, tokenURL string) *Client {
	if clientID == "" {
		clientID = defaultClientID
	}
	if scope == "" {
		scope = defaultScope
	}
	if deviceURL == "" {
		deviceURL = defaultDeviceURL
	}
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &Client{
		http:      httpClient,
		clock:     clock,
		clientID:  clientID,
		scope:     scope,
		deviceURL: deviceURL,
		tokenURL:  tokenURL,
	}
}

type deviceAuthResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
}

// StartDeviceAuthorization POSTs client_id/scope as form-encoded and
// stores the returned device/user codes. Returns the user code and
// verification URI for display.
func (c *Client) StartDeviceAuthorization() (userCode, verificationURI string, err error) {
	form := url.Values{"client_id": {c.clientID}, "scope": {c.scope}}
	body, status, err := c.post(c.deviceURL, form)
	if err != nil {
		return "", "", &Error{Kind: KindNetworkError, Message: err.Error()}
	}
	if status != http.StatusOK {
		return "", "", &Error{Kind: KindParseError, Message: fmt.Sprintf("unexpected status %d", status)}
	}

	var resp deviceAuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &Error{Kind: KindParseError, Message: err.Error()}
	}

	c.DeviceCode = resp.DeviceCode
	c.UserCode = resp.UserCode
	c.VerificationURI = resp.VerificationURI
	c.PollInterval = time.Duration(resp.Interval) * time.Second
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	c.ExpiresAt = c.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return c.UserCode, c.VerificationURI, nil
}

type tokenResponse struct {
	Error        string `json:"error"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// PollForToken exchanges the stored device code for tokens. The RFC 8628
// error taxonomy maps 1:1 onto ErrorKind; on success, stored tokens are
// replaced and a TokenView is returned.
func (c *Client) PollForToken() (TokenView, error) {
	form := url.Values{
		"grant_type":  {grantTypeDeviceCode},
		"device_code": {c.DeviceCode},
		"client_id":   {c.clientID},
	}
	body, _, err := c.post(c.tokenURL, form)
	if err != nil {
		return TokenView{}, &Error{Kind: KindNetworkError, Message: err.Error()}
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return TokenView{}, &Error{Kind: KindParseError, Message: err.Error()}
	}

	if resp.Error != "" {
		switch resp.Error {
		case "authorization_pending":
			return TokenView{}, &Error{Kind: KindPending, Message: resp.Error}
		case "slow_down":
			c.PollInterval += 5 * time.Second
			return TokenView{}, &Error{Kind: KindSlowDown, Message: resp.Error}
		case "expired_token":
			return TokenView{}, &Error{Kind: KindExpired, Message: resp.Error}
		case "access_denied":
			return TokenView{}, &Error{Kind: KindDenied, Message: resp.Error}
		default:
			return TokenView{}, &Error{Kind: KindInvalidRequest, Message: resp.Error}
		}
	}

	expiresAt := c.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	c.AccessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.IDToken = resp.IDToken
	c.ExpiresAt = expiresAt
	return TokenView{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		IDToken:      resp.IDToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// RefreshToken exchanges a refresh token for a new access token. If the
// response carries no new refresh token, the caller's existing one is
// retained.
func (c *Client) RefreshToken(refreshToken string) (TokenView, error) {
	form := url.Values{
		"grant_type":    {grantTypeRefreshToken},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
	}
	body, _, err := c.post(c.tokenURL, form)
	if err != nil {
		return TokenView{}, &Error{Kind: KindNetworkError, Message: err.Error()}
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return TokenView{}, &Error{Kind: KindParseError, Message: err.Error()}
	}

	if resp.Error != "" {
		if resp.Error == "invalid_grant" {
			return TokenView{}, &Error{Kind: KindInvalidGrant, Message: resp.Error}
		}
		return TokenView{}, &Error{Kind: KindInvalidRequest, Message: resp.Error}
	}

	newRefresh := resp.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	expiresAt := c.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	c.AccessToken = resp.AccessToken
	c.refreshToken = newRefresh
	c.IDToken = resp.IDToken
	c.ExpiresAt = expiresAt
	return TokenView{
		AccessToken:  resp.AccessToken,
		RefreshToken: newRefresh,
		IDToken:      resp.IDToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// IsValid reports whether the client's current token has not yet expired.
func (c *Client) IsValid() bool {
	return !c.ExpiresAt.IsZero() && !c.clock.Now().After(c.ExpiresAt)
}

func (c *Client) post(endpoint string, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
