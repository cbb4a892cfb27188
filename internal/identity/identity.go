// Package identity reads and writes the durable auth state of the
// device: token, role, and the mutually exclusive student/parent ids.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mindspace-health/mindspace-core/internal/auth"
	"github.com/mindspace-health/mindspace-core/internal/kvstore"
	"github.com/mindspace-health/mindspace-core/internal/roles"
)

// Durable auth keys in the local store. Shared with no one else; the
// session and history packages reach auth state only through Provider.
const (
	KeyAuthToken = "authToken"
	KeyUserRole  = "userRole"
	KeyStudentID = "studentId"
	KeyParentID  = "parentId"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Provider exposes the currently authenticated principal. All reads
// degrade to zero values; a device with no login is simply "no role".
type Provider struct {
	store kvstore.Store
}

func NewProvider(store kvstore.Store) *Provider {
	return &Provider{store: store}
}

// Role returns the normalized stored role, or "" when logged out.
func (p *Provider) Role(ctx context.Context) string {
	v, ok, err := p.store.Get(ctx, KeyUserRole)
	if err != nil || !ok {
		return ""
	}
	r := roles.Normalize(v)
	if !roles.IsValid(r) {
		return ""
	}
	return r
}

func (p *Provider) Token(ctx context.Context) string {
	v, ok, err := p.store.Get(ctx, KeyAuthToken)
	if err != nil || !ok {
		return ""
	}
	return strings.Trim(strings.TrimSpace(v), `"`)
}

// PrincipalIDs returns the stored student and parent ids. At most one
// is non-nil; a malformed stored value counts as absent.
func (p *Provider) PrincipalIDs(ctx context.Context) (studentID, parentID *int) {
	return p.readID(ctx, KeyStudentID), p.readID(ctx, KeyParentID)
}

func (p *Provider) readID(ctx context.Context, key string) *int {
	v, ok, err := p.store.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(v), `"`))
	if err != nil {
		return nil
	}
	return &n
}

// Clear removes all durable auth state (logout).
func (p *Provider) Clear(ctx context.Context) {
	for _, k := range []string{KeyAuthToken, KeyUserRole, KeyStudentID, KeyParentID} {
		if err := p.store.Remove(ctx, k); err != nil {
			log.Printf("identity: remove %s: %v", k, err)
		}
	}
}

// Authenticator performs the login call and persists the resulting
// auth state through a Provider.
type Authenticator struct {
	base     string
	http     *http.Client
	provider *Provider
	store    kvstore.Store
}

func NewAuthenticator(baseURL string, store kvstore.Store) *Authenticator {
	return &Authenticator{
		base:     strings.TrimSuffix(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		provider: NewProvider(store),
		store:    store,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login authenticates against POST /auth/login and stores the token,
// the role, and whichever principal id the token carries. The claims
// are read from the token itself so the stored identity can never
// drift from what the server will enforce.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*auth.Claims, error) {
	buf, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/auth/login", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("login: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", err)
	}
	claims, err := auth.ParseUnverified(lr.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("login: parse token: %w", err)
	}
	role := roles.Normalize(claims.Role)
	if !roles.IsValid(role) {
		return nil, fmt.Errorf("login: unknown role %q", claims.Role)
	}
	if err := a.store.Set(ctx, KeyAuthToken, lr.AccessToken); err != nil {
		return nil, err
	}
	if err := a.store.Set(ctx, KeyUserRole, role); err != nil {
		return nil, err
	}
	if err := a.storeID(ctx, KeyStudentID, claims.StudentID); err != nil {
		return nil, err
	}
	if err := a.storeID(ctx, KeyParentID, claims.ParentID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (a *Authenticator) storeID(ctx context.Context, key string, id *int) error {
	if id == nil {
		return a.store.Remove(ctx, key)
	}
	return a.store.Set(ctx, key, strconv.Itoa(*id))
}

func (a *Authenticator) Provider() *Provider { return a.provider }
