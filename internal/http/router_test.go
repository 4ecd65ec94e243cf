package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/config"
	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/guard"
	httptransport "github.com/firstrun/firstrun-gate/internal/http"
	"github.com/firstrun/firstrun-gate/internal/http/handler"
	httpmiddleware "github.com/firstrun/firstrun-gate/internal/http/middleware"
	"github.com/firstrun/firstrun-gate/internal/onboarding"
	"github.com/firstrun/firstrun-gate/internal/progress"
	"github.com/firstrun/firstrun-gate/internal/service"
	"github.com/firstrun/firstrun-gate/internal/session"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Environment:        "test",
		LoginPath:          "/login",
		OnboardingPath:     "/onboarding",
		AppPath:            "/app",
		ServiceName:        "firstrun-gate",
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
	}

	users := &memoryUserRepo{}
	tokens := session.NewTokenStore(users, []byte("0123456789abcdef0123456789abcdef"), "firstrun-gate", time.Hour, zap.NewNop())
	require.NoError(t, tokens.WarmUp(context.Background()))

	resolver := onboarding.NewResolver(progress.NewMemoryStore(), zap.NewNop())
	routes := guard.Routes{Login: cfg.LoginPath, Onboarding: cfg.OnboardingPath, App: cfg.AppPath}

	authService := service.NewAuthService(users, tokens, zap.NewNop())
	flowService := service.NewOnboardingService(resolver, users, zap.NewNop())

	return httptransport.NewRouter(
		cfg,
		handler.NewAuthHandler(authService),
		handler.NewOnboardingHandler(flowService),
		handler.NewAppHandler(authService),
		&httpmiddleware.Session{Tokens: tokens},
		httpmiddleware.NewGuards(resolver, routes),
		nil,
	)
}

func do(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFullOnboardingJourney(t *testing.T) {
	r := newTestRouter(t)

	// Register opens a session.
	w := do(t, r, http.MethodPost, "/auth/register", "", `{"email":"u@example.com","password":"password123","name":"User"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var sess service.AuthSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.AccessToken)
	token := sess.AccessToken

	// Fresh user: protected area pushes into onboarding.
	w = do(t, r, http.MethodGet, "/app", token, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/onboarding", w.Header().Get("Location"))

	// Onboarding area admits the user.
	w = do(t, r, http.MethodGet, "/onboarding", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Start, then complete the flow.
	w = do(t, r, http.MethodPost, "/onboarding/start", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/onboarding/complete", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var state service.FlowState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Equal(t, domain.OnboardingCompleted, state.Status)

	// The protected area now authorizes; onboarding evicts.
	w = do(t, r, http.MethodGet, "/app", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/onboarding", token, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/app", w.Header().Get("Location"))

	// Guest area no longer admits the user.
	w = do(t, r, http.MethodGet, "/login", token, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/app", w.Header().Get("Location"))
}

func TestReloadDuringFlowForcesSkip(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/auth/register", "", `{"email":"u@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var sess service.AuthSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	token := sess.AccessToken

	w = do(t, r, http.MethodPost, "/onboarding/start", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	// The "reload": a fresh guarded navigation back into the onboarding
	// area. The persisted in_progress collapses to skipped and the guard
	// sends the user to the app instead of the flow.
	w = do(t, r, http.MethodGet, "/onboarding", token, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/app", w.Header().Get("Location"))

	w = do(t, r, http.MethodGet, "/app", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Starting over is rejected.
	w = do(t, r, http.MethodPost, "/onboarding/start", token, "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/auth/register", "", `{"email":"u@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/auth/login", "", `{"email":"u@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var sess service.AuthSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	w = do(t, r, http.MethodGet, "/auth/me", sess.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/auth/login", "", `{"email":"u@example.com","password":"wrong-password"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/auth/logout", sess.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
}

type memoryUserRepo struct {
	users map[string]domain.User
}

func (m *memoryUserRepo) GetByID(ctx context.Context, userID string) (domain.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *memoryUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if m.users == nil {
		m.users = make(map[string]domain.User)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.Email] = user
	return user, nil
}

func (m *memoryUserRepo) MarkOnboarded(ctx context.Context, userID string) error {
	for email, u := range m.users {
		if u.ID == userID {
			u.HasOnboarded = true
			m.users[email] = u
			return nil
		}
	}
	return pgx.ErrNoRows
}
