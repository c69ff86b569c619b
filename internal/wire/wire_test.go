package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"coffee-shop-api/internal/data/entity"
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/usecase"
	"coffee-shop-api/pkg/cache"
	"coffee-shop-api/pkg/token"
	"coffee-shop-api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mapUsers is a minimal in-memory store for routing tests.
type mapUsers struct {
	mu    sync.Mutex
	next  int64
	users map[int64]entity.User
}

func (m *mapUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	m.next++
	u.ID = m.next
	m.users[u.ID] = *u
	return nil
}

func (m *mapUsers) FindByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *mapUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mapUsers) FindAll(_ context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.User
	for id := int64(1); id <= m.next; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (m *mapUsers) Update(_ context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	patch.Apply(&u)
	m.users[id] = u
	return &u, nil
}

func (m *mapUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mapUsers) SetVerificationCode(_ context.Context, id int64, code string, exp time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsVerified {
		return false, nil
	}
	u.SetVerification(code, exp)
	m.users[id] = u
	return true, nil
}

func (m *mapUsers) ConfirmVerification(_ context.Context, id int64, code string, exp time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.HasPendingCode() || *u.VerificationCode != code || !u.VerificationExpiresAt.Equal(exp) {
		return false, nil
	}
	u.MarkVerified()
	m.users[id] = u
	return true, nil
}

func (m *mapUsers) DeleteUnverifiedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type capturedCodes struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *capturedCodes) SendVerificationCode(email, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = code
}

func (c *capturedCodes) get(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

type testApp struct {
	router http.Handler
	users  *mapUsers
	codes  *capturedCodes
	tokens *token.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	config := &utils.Config{
		App:          utils.AppConfig{Name: "test"},
		Verification: utils.VerificationConfig{CodeTTL: time.Hour},
		Redis:        utils.RedisConfig{TTL: time.Minute},
		Sweep:        utils.SweepConfig{Retention: 48 * time.Hour},
	}
	users := &mapUsers{users: make(map[int64]entity.User)}
	repo := &repository.Repository{User: users}
	codes := &capturedCodes{codes: make(map[string]string)}
	tokens := token.NewManager("secret", time.Minute, time.Hour)
	service := usecase.NewService(repo, cache.Nop{}, codes, tokens, config, zap.NewNop())

	return &testApp{
		router: Wiring(repo, service, tokens, config, zap.NewNop()).Router,
		users:  users,
		codes:  codes,
		tokens: tokens,
	}
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSignupVerifyLoginThroughRouter(t *testing.T) {
	app := newTestApp(t)
	creds := map[string]string{"email": "a@x.com", "password": "pw123"}

	code, body := app.do(t, http.MethodPost, "/api/auth/signup/", "", creds)
	require.Equal(t, http.StatusCreated, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "a@x.com", data["email"])
	assert.NotContains(t, data, "code")

	code, _ = app.do(t, http.MethodPost, "/api/auth/signup/", "", creds)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.do(t, http.MethodPost, "/api/auth/login/", "", creds)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = app.do(t, http.MethodPost, "/api/auth/verify/", "", map[string]string{
		"email": "a@x.com", "code": app.codes.get("a@x.com"),
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodPost, "/api/auth/resend-code/", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = app.do(t, http.MethodPost, "/api/auth/login/", "", creds)
	require.Equal(t, http.StatusOK, code)
	tokens := body["data"].(map[string]any)
	access := tokens["access_token"].(string)
	refresh := tokens["refresh_token"].(string)

	code, body = app.do(t, http.MethodGet, "/api/me/", access, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a@x.com", body["data"].(map[string]any)["email"])

	code, body = app.do(t, http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["data"].(map[string]any)["access"])

	code, _ = app.do(t, http.MethodGet, "/api/me/", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	admin := &entity.User{Email: "boss@x.com", Role: entity.RoleAdmin, IsVerified: true}
	staff := &entity.User{Email: "staff@x.com", Role: entity.RoleRegular, IsStaff: true, IsVerified: true}
	regular := &entity.User{Email: "joe@x.com", Role: entity.RoleRegular, IsVerified: true}
	for _, u := range []*entity.User{admin, staff, regular} {
		require.NoError(t, app.users.Create(ctx, u))
	}
	bearer := func(u *entity.User) string {
		pair, err := app.tokens.IssuePair(u.ID)
		require.NoError(t, err)
		return pair.Access
	}

	code, _ := app.do(t, http.MethodGet, "/api/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = app.do(t, http.MethodGet, "/api/users/", bearer(regular), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := app.do(t, http.MethodGet, "/api/users/?page=1&per_page=2", bearer(staff), nil)
	require.Equal(t, http.StatusOK, code)
	page := body["data"].(map[string]any)
	assert.Len(t, page["data"], 2)
	assert.Equal(t, float64(3), page["pagination"].(map[string]any)["total"])

	code, _ = app.do(t, http.MethodPatch, "/api/users/3/", bearer(admin), map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodGet, "/api/users/", bearer(regular), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodDelete, "/api/users/2/", bearer(admin), nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodGet, "/api/users/2/", bearer(admin), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(t, http.MethodGet, "/api/users/", bearer(staff), nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
