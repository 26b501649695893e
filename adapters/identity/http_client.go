// Package identity talks to the user profile service, the external owner
// of user records. The gateway only needs three calls: find by provider
// identity, create on first sight, and reload by id.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// userSummary is the profile service's user representation.
type userSummary struct {
	ID       string   `json:"id"`
	Nickname string   `json:"nickname"`
	Roles    []string `json:"roles"`
}

// createUserRequest is the signup payload for first-seen OAuth users.
type createUserRequest struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"provider_user_id"`
	Nickname       string `json:"nickname"`
}

// HTTPResolver resolves users against the profile service over HTTP.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.IdentityResolver = (*HTTPResolver)(nil)

// NewHTTPResolver builds a resolver for the given base URL. A nil client
// gets a default with a bounded timeout.
func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// ResolveOrCreate looks the user up by provider identity and falls back to
// signup when the profile service reports 404. Signup is idempotent on the
// profile side, so a racing duplicate create returns the same user.
func (r *HTTPResolver) ResolveOrCreate(ctx context.Context, payload core.ExchangePayload) (core.AuthenticatedUser, error) {
	if payload.Provider == "" || payload.ProviderUserID == "" {
		return core.AuthenticatedUser{}, core.Internal("exchange payload missing provider identity", nil)
	}

	path := fmt.Sprintf("/internal/users/oauth/%s/%s",
		url.PathEscape(payload.Provider), url.PathEscape(payload.ProviderUserID))

	user, err := r.get(ctx, path)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.AuthenticatedUser{}, err
	}

	return r.create(ctx, payload)
}

// Load fetches the current user state by internal id. 404 maps to
// core.ErrNotFound so callers can treat a vanished user as unauthorized.
func (r *HTTPResolver) Load(ctx context.Context, userID string) (core.AuthenticatedUser, error) {
	if userID == "" {
		return core.AuthenticatedUser{}, core.Internal("user id is blank", nil)
	}
	return r.get(ctx, "/internal/users/"+url.PathEscape(userID))
}

func (r *HTTPResolver) get(ctx context.Context, path string) (core.AuthenticatedUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return core.AuthenticatedUser{}, core.Internal("build user service request", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return core.AuthenticatedUser{}, unreachable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return core.AuthenticatedUser{}, core.ErrNotFound
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return decodeUser(resp.Body)
	default:
		return core.AuthenticatedUser{}, core.NewError(core.CodeServiceUnavailable,
			"user service unavailable", fmt.Errorf("user service returned %d", resp.StatusCode))
	}
}

func (r *HTTPResolver) create(ctx context.Context, payload core.ExchangePayload) (core.AuthenticatedUser, error) {
	body, err := json.Marshal(createUserRequest{
		Provider:       payload.Provider,
		ProviderUserID: payload.ProviderUserID,
		Nickname:       payload.Nickname,
	})
	if err != nil {
		return core.AuthenticatedUser{}, core.Internal("serialize signup request", err)
	}

	target := r.baseURL + "/internal/users/oauth/" + url.PathEscape(payload.Provider)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return core.AuthenticatedUser{}, core.Internal("build signup request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return core.AuthenticatedUser{}, unreachable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return decodeUser(resp.Body)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// A rejected signup is a broken contract between services, not a
		// client mistake.
		return core.AuthenticatedUser{}, core.Internal("user service rejected oauth signup",
			fmt.Errorf("user service returned %d", resp.StatusCode))
	default:
		return core.AuthenticatedUser{}, core.NewError(core.CodeServiceUnavailable,
			"user service unavailable", fmt.Errorf("user service returned %d", resp.StatusCode))
	}
}

func decodeUser(body io.Reader) (core.AuthenticatedUser, error) {
	var summary userSummary
	if err := json.NewDecoder(body).Decode(&summary); err != nil {
		return core.AuthenticatedUser{}, core.Internal("decode user service response", err)
	}
	if summary.ID == "" {
		return core.AuthenticatedUser{}, core.Internal("user service response missing id", nil)
	}
	return core.AuthenticatedUser{
		ID:       summary.ID,
		Nickname: summary.Nickname,
		Roles:    summary.Roles,
	}, nil
}

// unreachable maps transport failures: a deadline hit is a gateway
// timeout, everything else means the service is down.
func unreachable(err error) *core.GatewayError {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewError(core.CodeGatewayTimeout, "user service timed out", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.NewError(core.CodeGatewayTimeout, "user service timed out", err)
	}
	return core.NewError(core.CodeServiceUnavailable, "user service unreachable", err)
}
