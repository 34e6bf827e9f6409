package session

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

type fakeHTTPClient struct {
	status int
	body   string
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewBufferString(f.body)),
	}, nil
}

func TestGetGameProfiles(t *testing.T) {
	fake := fakeHTTPClient{status: http.StatusOK, body: `{"owner":"acct-1","profiles":[{"uuid":"u1","username":"Steve"}]}`}
	c := NewClient(fake, "", "")

	list, err := c.GetGameProfiles("tok")
	if err != nil {
		t.Fatal(err)
	}
	if list.Owner != "acct-1" || len(list.Profiles) != 1 || list.Profiles[0].Username != "Steve" {
		t.Fatalf("got %+v", list)
	}
}

func TestCreateGameSessionParsesExpiry(t *testing.T) {
	fake := fakeHTTPClient{status: http.StatusOK, body: `{"sessionToken":"st1","identityToken":"it1","expiresAt":"1970-01-01T00:00:00Z"}`}
	c := NewClient(fake, "", "")

	sess, err := c.CreateGameSession("tok", "profile-uuid")
	if err != nil {
		t.Fatal(err)
	}
	if sess.SessionToken != "st1" || sess.ExpiresAt != 0 {
		t.Fatalf("got %+v", sess)
	}
}

func TestStatusMapping401(t *testing.T) {
	fake := fakeHTTPClient{status: http.StatusUnauthorized, body: `{"message":"bad token"}`}
	c := NewClient(fake, "", "")

	_, err := c.GetGameProfiles("tok")
	serr, ok := err.(*Error)
	if !ok || serr.Kind != KindAuthenticationFailed {
		t.Fatalf("got %v", err)
	}
}

func TestStatusMapping500(t *testing.T) {
	fake := fakeHTTPClient{status: http.StatusInternalServerError, body: `oops`}
	c := NewClient(fake, "", "")

	_, err := c.GetGameProfiles("tok")
	serr, ok := err.(*Error)
	if !ok || serr.Kind != KindServiceError {
		t.Fatalf("got %v", err)
	}
}

func TestMalformedJSONIsInvalidResponse(t *testing.T) {
	fake := fakeHTTPClient{status: http.StatusOK, body: `{not json`}
	c := NewClient(fake, "", "")

	_, err := c.GetGameProfiles("tok")
	serr, ok := err.(*Error)
	if !ok || serr.Kind != KindInvalidResponse {
		t.Fatalf("got %v", err)
	}
}

func TestExchangeAuthGrantRoundTrip(t *testing.T) {
	fake := fakeHTTPClient{status: http.StatusOK, body: `{"accessToken":"server-bound-token"}`}
	c := NewClient(fake, "", "")

	tok, err := c.ExchangeAuthGrant("tok", "grant-1", "aa:bb:cc")
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "server-bound-token" {
		t.Fatalf("got %+v", tok)
	}
}
