package oauth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	jwtx "github.com/dropDatabas3/devportal/internal/jwt"
	"github.com/dropDatabas3/devportal/internal/security/password"
	"github.com/dropDatabas3/devportal/internal/security/pkce"
	"github.com/dropDatabas3/devportal/internal/store/memory"
)

const (
	testClientID = "app_0123456789abcdef0123456789abcdef"
	testRedirect = "https://app.test/callback"
	testPassword = "correct-horse"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	reg      *memory.Registry
	codes    *memory.AuthCodes // nil cuando el store no es el de memoria
	store    repository.AuthCodeRepository
	issuer   *jwtx.Issuer
	clock    *clock
	svc      Services
	verifier string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codes := memory.NewAuthCodes()
	f := newFixtureWithCodes(t, codes)
	f.codes = codes
	return f
}

func newFixtureWithCodes(t *testing.T, codes repository.AuthCodeRepository) *fixture {
	t.Helper()

	reg := memory.NewRegistry()
	require.NoError(t, reg.PutApplication(repository.Application{
		ID:          "app-1",
		ClientID:    testClientID,
		Name:        "Demo",
		RedirectURI: testRedirect,
		Roles:       []string{"viewer", "admin"},
	}))
	require.NoError(t, reg.PutApplication(repository.Application{
		ID:          "app-2",
		ClientID:    "app_other",
		Name:        "Other",
		RedirectURI: "https://other.test/cb",
	}))
	hash, err := password.Hash(testPassword)
	require.NoError(t, err)
	require.NoError(t, reg.PutUser(repository.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Access:       []repository.AccessGrant{{ApplicationID: "app-1", Role: "admin"}},
	}))

	issuer, err := jwtx.NewIssuer("devportal", []byte(strings.Repeat("k", 32)), 720*time.Hour)
	require.NoError(t, err)

	verifier, err := pkce.GenerateVerifier()
	require.NoError(t, err)

	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f := &fixture{
		reg:      reg,
		store:    codes,
		issuer:   issuer,
		clock:    clk,
		verifier: verifier,
	}
	f.svc = NewServices(Deps{
		Apps:           reg,
		Users:          reg,
		Codes:          codes,
		Issuer:         issuer,
		FrontendOrigin: "http://localhost:5173",
		Now:            clk.Now,
	})
	return f
}

func (f *fixture) params() ClientParams {
	return ClientParams{
		ClientID:            testClientID,
		RedirectURL:         testRedirect,
		CodeChallenge:       pkce.Challenge(f.verifier),
		CodeChallengeMethod: pkce.MethodS256,
	}
}

func (f *fixture) authorize(t *testing.T) string {
	t.Helper()
	code, err := f.svc.Authorize.Authorize(context.Background(), AuthorizeRequest{
		ClientParams: f.params(),
		Email:        "alice@example.com",
		Password:     testPassword,
	})
	require.NoError(t, err)
	return code
}

func (f *fixture) exchange(code string) (*TokenResult, error) {
	return f.svc.Token.Exchange(context.Background(), ExchangeRequest{
		Code:         code,
		CodeVerifier: f.verifier,
		ClientID:     testClientID,
	})
}

// ─── Validate ───

func TestValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Validate.Validate(ctx, f.params())
	require.NoError(t, err)
	assert.Equal(t, "Demo", app.Name)
	assert.Equal(t, testClientID, app.ClientID)

	cases := []struct {
		name   string
		mutate func(p *ClientParams)
		want   error
	}{
		{"missing client", func(p *ClientParams) { p.ClientID = "" }, ErrInvalidRequest},
		{"missing redirect", func(p *ClientParams) { p.RedirectURL = "" }, ErrInvalidRequest},
		{"missing challenge", func(p *ClientParams) { p.CodeChallenge = "" }, ErrInvalidRequest},
		{"missing method", func(p *ClientParams) { p.CodeChallengeMethod = "" }, ErrInvalidRequest},
		{"plain method", func(p *ClientParams) { p.CodeChallengeMethod = "plain" }, ErrUnsupportedChallengeMethod},
		{"lowercase method", func(p *ClientParams) { p.CodeChallengeMethod = "s256" }, ErrUnsupportedChallengeMethod},
		{"unknown client", func(p *ClientParams) { p.ClientID = "app_nope" }, ErrUnknownClient},
		{"trailing slash", func(p *ClientParams) { p.RedirectURL = testRedirect + "/" }, ErrRedirectMismatch},
		{"case differs", func(p *ClientParams) { p.RedirectURL = "https://APP.test/callback" }, ErrRedirectMismatch},
		{"extra query", func(p *ClientParams) { p.RedirectURL = testRedirect + "?x=1" }, ErrRedirectMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := f.params()
			tc.mutate(&p)
			_, err := f.svc.Validate.Validate(ctx, p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// ─── Authorize ───

func TestAuthorize_IssuesCode(t *testing.T) {
	f := newFixture(t)

	code := f.authorize(t)
	assert.Len(t, code, 64)

	rec, err := f.codes.Get(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, testClientID, rec.ClientID)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, pkce.MethodS256, rec.CodeChallengeMethod)
	assert.Equal(t, testRedirect, rec.RedirectURL)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), rec.ExpiresAt)

	second := f.authorize(t)
	assert.NotEqual(t, code, second)
}

func TestAuthorize_EmailIsNormalized(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Authorize.Authorize(context.Background(), AuthorizeRequest{
		ClientParams: f.params(),
		Email:        "  Alice@Example.COM ",
		Password:     testPassword,
	})
	assert.NoError(t, err)
}

func TestAuthorize_CredentialErrorsAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, errUnknown := f.svc.Authorize.Authorize(ctx, AuthorizeRequest{
		ClientParams: f.params(),
		Email:        "nobody@example.com",
		Password:     testPassword,
	})
	_, errWrong := f.svc.Authorize.Authorize(ctx, AuthorizeRequest{
		ClientParams: f.params(),
		Email:        "alice@example.com",
		Password:     "wrong",
	})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Zero(t, f.codes.Len())
}

func TestAuthorize_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing password", func(t *testing.T) {
		_, err := f.svc.Authorize.Authorize(ctx, AuthorizeRequest{ClientParams: f.params(), Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("no grant for application", func(t *testing.T) {
		p := f.params()
		p.ClientID = "app_other"
		p.RedirectURL = "https://other.test/cb"
		_, err := f.svc.Authorize.Authorize(ctx, AuthorizeRequest{ClientParams: p, Email: "alice@example.com", Password: testPassword})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("redirect mismatch checked before credentials", func(t *testing.T) {
		p := f.params()
		p.RedirectURL = "https://evil.test/cb"
		_, err := f.svc.Authorize.Authorize(ctx, AuthorizeRequest{ClientParams: p, Email: "nobody@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrRedirectMismatch)
	})

	assert.Zero(t, f.codes.Len())
}

func TestAuthorizeWithSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.issuer.SignRaw(jwtv5.MapClaims{
		"id":  "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	code, err := f.svc.Authorize.AuthorizeWithSession(ctx, SessionAuthorizeRequest{
		ClientParams: f.params(),
		SessionToken: session,
	})
	require.NoError(t, err)
	assert.Len(t, code, 64)

	t.Run("missing session", func(t *testing.T) {
		_, err := f.svc.Authorize.AuthorizeWithSession(ctx, SessionAuthorizeRequest{ClientParams: f.params()})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := jwtx.NewIssuer("x", []byte("another-secret-another-secret-xx"), time.Hour)
		require.NoError(t, err)
		tok, err := other.SignRaw(jwtv5.MapClaims{"id": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
		require.NoError(t, err)
		_, err = f.svc.Authorize.AuthorizeWithSession(ctx, SessionAuthorizeRequest{ClientParams: f.params(), SessionToken: tok})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		tok, err := f.issuer.SignRaw(jwtv5.MapClaims{"id": "ghost", "exp": time.Now().Add(time.Hour).Unix()})
		require.NoError(t, err)
		_, err = f.svc.Authorize.AuthorizeWithSession(ctx, SessionAuthorizeRequest{ClientParams: f.params(), SessionToken: tok})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

// ─── Token ───

func TestExchange_Success(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)

	res, err := f.exchange(code)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(720*3600), res.ExpiresIn)
	assert.Equal(t, "admin", res.Role)
	assert.Equal(t, TokenUser{ID: "user-1", Username: "alice", Email: "alice@example.com"}, res.User)

	claims, err := f.issuer.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["userId"])
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "app-1", claims["applicationId"])
	assert.Equal(t, testClientID, claims["clientId"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "devportal", claims["iss"])

	assert.Zero(t, f.codes.Len())
}

func TestExchange_SecondUseFails(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)

	_, err := f.exchange(code)
	require.NoError(t, err)

	_, err = f.exchange(code)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchange_Expired(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)

	f.clock.Advance(11 * time.Minute)
	_, err := f.exchange(code)
	assert.ErrorIs(t, err, ErrExpiredGrant)

	_, err = f.codes.Get(context.Background(), code)
	assert.True(t, repository.IsNotFound(err), "expired code must be deleted")
}

func TestExchange_ExactExpiryStillValid(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)

	f.clock.Advance(10 * time.Minute)
	_, err := f.exchange(code)
	assert.NoError(t, err)
}

func TestExchange_MismatchLeavesCode(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)
	ctx := context.Background()

	_, err := f.svc.Token.Exchange(ctx, ExchangeRequest{Code: code, CodeVerifier: f.verifier, ClientID: "app_other"})
	assert.ErrorIs(t, err, ErrClientMismatch)

	_, err = f.svc.Token.Exchange(ctx, ExchangeRequest{Code: code, CodeVerifier: f.verifier + "x", ClientID: testClientID})
	assert.ErrorIs(t, err, ErrInvalidVerifier)

	assert.Equal(t, 1, f.codes.Len())

	_, err = f.exchange(code)
	assert.NoError(t, err)
}

func TestExchange_MissingFields(t *testing.T) {
	f := newFixture(t)
	for _, req := range []ExchangeRequest{
		{CodeVerifier: "v", ClientID: "c"},
		{Code: "c", ClientID: "c"},
		{Code: "c", CodeVerifier: "v"},
	} {
		_, err := f.svc.Token.Exchange(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestExchange_UnknownCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.exchange(strings.Repeat("a", 64))
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchange_RevokedGrant(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)

	require.NoError(t, f.reg.SetGrants("user-1", nil))

	_, err := f.exchange(code)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, f.codes.Len(), "code stays consumed after access_denied")
}

func TestExchange_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t)

	const n = 16
	var (
		wg      sync.WaitGroup
		wins    atomic.Int32
		invalid atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.exchange(code)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrInvalidGrant):
				invalid.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(n-1), invalid.Load())
}

// ─── Origins ───

func TestNormalizeOrigin(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://App.Test/callback?x=1", "https://app.test", true},
		{"https://app.test:443/cb", "https://app.test", true},
		{"http://app.test:80", "http://app.test", true},
		{"http://localhost:5173", "http://localhost:5173", true},
		{"https://app.test:8443/cb", "https://app.test:8443", true},
		{"HTTP://[::1]:8080/x", "http://[::1]:8080", true},
		{"ftp://app.test", "", false},
		{"/relative/path", "", false},
		{"not a url", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeOrigin(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestResolveAllowedOrigins(t *testing.T) {
	set := ResolveAllowedOrigins("http://localhost:5173", nil)
	assert.Equal(t, map[string]struct{}{"http://localhost:5173": {}}, set)

	set = ResolveAllowedOrigins("http://localhost:5173", &repository.Application{RedirectURI: "https://app.test:443/cb"})
	assert.Contains(t, set, "https://app.test")
	assert.Contains(t, set, "http://localhost:5173")
	assert.Len(t, set, 2)

	set = ResolveAllowedOrigins("http://localhost:5173", &repository.Application{RedirectURI: "garbage"})
	assert.Len(t, set, 1)
}

type brokenApps struct{}

func (brokenApps) GetByClientID(context.Context, string) (*repository.Application, error) {
	return nil, errors.New("db down")
}

func TestOriginService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.svc.Origins

	assert.True(t, o.OriginAllowed(ctx, testClientID, "https://app.test"))
	assert.True(t, o.OriginAllowed(ctx, testClientID, "https://APP.test:443"))
	assert.True(t, o.OriginAllowed(ctx, "", "http://localhost:5173"))
	assert.True(t, o.OriginAllowed(ctx, "app_nope", "http://localhost:5173"))

	assert.False(t, o.OriginAllowed(ctx, testClientID, "https://evil.test"))
	assert.False(t, o.OriginAllowed(ctx, "app_other", "https://app.test"))
	assert.False(t, o.OriginAllowed(ctx, "app_nope", "https://app.test"))
	assert.False(t, o.OriginAllowed(ctx, testClientID, "http://app.test"))

	broken := &OriginService{Apps: brokenApps{}, FrontendOrigin: "http://localhost:5173"}
	assert.False(t, broken.OriginAllowed(ctx, testClientID, "https://app.test"))
	assert.True(t, broken.OriginAllowed(ctx, testClientID, "http://localhost:5173"))
}
