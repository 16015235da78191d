package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/auth"
)

// refreshLeeway renews the access token this long before its exp claim so a
// request never leaves with a token about to expire mid-flight.
const refreshLeeway = 30 * time.Second

// TokenSource yields a valid access token for an outgoing request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token forever. Test helper.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

type staticTokenSource string

func (s staticTokenSource) Token(context.Context) (string, error) { return string(s), nil }

// TokenStore persists the refresh token across runs.
type TokenStore interface {
	GetRefreshToken() (string, error)
	SaveRefreshToken(token string) error
}

// RefreshTokenSource exchanges a long-lived refresh token for short-lived
// access tokens, renewing lazily as they near expiry. Safe for concurrent use.
type RefreshTokenSource struct {
	baseURL string
	http    *http.Client
	logger  core.Logger

	mu      sync.Mutex
	refresh string
	access  string
	exp     time.Time
}

func NewRefreshTokenSource(conf *core.Config, refresh string, logger core.Logger) *RefreshTokenSource {
	return &RefreshTokenSource{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		http:    &http.Client{Timeout: conf.API.Timeout},
		logger:  logger,
		refresh: refresh,
	}
}

func (s *RefreshTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.access != "" && time.Now().Add(refreshLeeway).Before(s.exp) {
		return s.access, nil
	}

	var out struct {
		Access string `json:"access"`
	}
	err := postJSON(ctx, s.http, s.baseURL+"/user/token/refresh/", map[string]string{"refresh": s.refresh}, &out)
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("api: token refresh returned no access token")
	}
	s.access = out.Access
	s.exp = tokenExpiry(out.Access)
	return s.access, nil
}

// tokenExpiry reads the exp claim without verifying the signature; we only
// need it for renewal scheduling, the backend does the verification.
func tokenExpiry(token string) time.Time {
	claims := jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == 0 {
		// opaque token, force a refresh on the next call
		return time.Now().Add(refreshLeeway)
	}
	return time.Unix(claims.ExpiresAt, 0)
}

type (
	// Credentials is the token pair issued at login.
	Credentials struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	loginResponse struct {
		Credentials
		User struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Picture   string `json:"picture"`
			Role      string `json:"role"`
		} `json:"user"`
	}
)

// ErrRoleRejected means the credentials are valid but the account is not a
// professor's.
var ErrRoleRejected = errors.New("api: account is not a professor")

// Login authenticates against the backend and enforces the professor-only
// policy before any tokens are handed out.
func Login(ctx context.Context, conf *core.Config, email, password string) (Credentials, auth.Account, error) {
	httpc := &http.Client{Timeout: conf.API.Timeout}
	baseURL := strings.TrimRight(conf.API.BaseURL, "/")

	var out loginResponse
	err := postJSON(ctx, httpc, baseURL+"/user/token/", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return Credentials{}, auth.Account{}, err
	}

	acct := auth.Account{
		Email:     out.User.Email,
		FirstName: out.User.FirstName,
		LastName:  out.User.LastName,
		Picture:   out.User.Picture,
		Role:      core.CleanString(out.User.Role, true),
	}
	if acct.Role != auth.RoleProfessor {
		return Credentials{}, acct, ErrRoleRejected
	}
	return out.Credentials, acct, nil
}

func postJSON(ctx context.Context, httpc *http.Client, url string, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "api: encoding request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return errors.Wrap(err, "api: building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "api: POST %s", url)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := ioutil.ReadAll(io.LimitReader(res.Body, 1<<10))
		return &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(out), "api: decoding response")
}
