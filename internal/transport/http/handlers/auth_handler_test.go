package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/enums"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
	sessionsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/session"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/transport/http/handlers"
)

type memDirectory struct {
	users     map[string]model.User
	passwords map[string]string
}

func (d *memDirectory) Lookup(_ context.Context, username string) (model.User, error) {
	user, ok := d.users[username]
	if !ok {
		return model.User{}, sessionsvc.ErrInvalidCredentials
	}
	return user, nil
}

func (d *memDirectory) VerifyPassword(_ context.Context, username, password string) error {
	if d.passwords[username] != password {
		return sessionsvc.ErrInvalidCredentials
	}
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions []model.Session
}

func (s *memSessionStore) FindActive(_ context.Context, userID int64) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Status == enums.SessionStatusActive {
			return sess, nil
		}
	}
	return model.Session{}, sessionsvc.ErrNoActiveSession
}

func (s *memSessionStore) InsertActive(_ context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.UserID == session.UserID && sess.Status == enums.SessionStatusActive {
			return sessionsvc.ErrSessionConflict
		}
	}
	s.sessions = append(s.sessions, session)
	return nil
}

func (s *memSessionStore) Revoke(_ context.Context, userID int64, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows int64
	for i := range s.sessions {
		sess := &s.sessions[i]
		if sess.UserID == userID && sess.Token == token && sess.Status == enums.SessionStatusActive {
			sess.Status = enums.SessionStatusRevoked
			rows++
		}
	}
	return rows, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string) (bool, error) { return true, nil }

type noopPresence struct{}

func (noopPresence) Register(context.Context, string) error { return nil }

func newAuthHandlerForTest(t *testing.T) *handlers.AuthHandler {
	t.Helper()

	directory := &memDirectory{
		users: map[string]model.User{
			"mrivera":  {ID: 101, Username: "mrivera", Code: "EMP-0101"},
			"jblocked": {ID: 102, Username: "jblocked", Code: "EMP-0102", Locked: true},
		},
		passwords: map[string]string{
			"mrivera":  "s3cret",
			"jblocked": "s3cret",
		},
	}
	svc := sessionsvc.NewService(
		sessionsvc.NewJWTManager("test-secret", time.Hour),
		directory,
		&memSessionStore{},
		noopNotifier{},
		noopPresence{},
		nil,
		nil,
	)
	return handlers.NewAuthHandler(svc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &payload)
	return payload.Code
}

func TestLoginEndpoint(t *testing.T) {
	handler := newAuthHandlerForTest(t)

	rec := postJSON(t, handler.Login, "/v1/auth/login", map[string]string{
		"username": "mrivera",
		"password": "s3cret",
		"channel":  "ws-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Token        string `json:"token"`
		ExpiresInSec int64  `json:"expires_in_sec"`
		User         struct {
			UserID   int64  `json:"user_id"`
			Username string `json:"username"`
			Code     string `json:"code"`
		} `json:"user"`
	}
	decodeBody(t, rec, &res)
	if res.Token == "" || res.ExpiresInSec <= 0 {
		t.Fatalf("unexpected login response: %+v", res)
	}
	if res.User.UserID != 101 || res.User.Code != "EMP-0101" {
		t.Fatalf("unexpected user payload: %+v", res.User)
	}
}

func TestLoginEndpointErrors(t *testing.T) {
	handler := newAuthHandlerForTest(t)

	cases := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "wrong password",
			body:       map[string]string{"username": "mrivera", "password": "nope", "channel": "ws-1"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "unknown user",
			body:       map[string]string{"username": "ghost", "password": "nope", "channel": "ws-1"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "locked account",
			body:       map[string]string{"username": "jblocked", "password": "s3cret", "channel": "ws-1"},
			wantStatus: http.StatusForbidden,
			wantCode:   "ACCOUNT_LOCKED",
		},
		{
			name:       "missing channel",
			body:       map[string]string{"username": "mrivera", "password": "s3cret"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, handler.Login, "/v1/auth/login", tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tc.wantCode {
				t.Fatalf("error code = %q, want %q", got, tc.wantCode)
			}
		})
	}
}

func TestLoginEndpointRejectsMalformedBody(t *testing.T) {
	handler := newAuthHandlerForTest(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := errorCode(t, rec); got != "INVALID_REQUEST" {
		t.Fatalf("error code = %q", got)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	handler := newAuthHandlerForTest(t)

	rec := postJSON(t, handler.Login, "/v1/auth/login", map[string]string{
		"username": "mrivera",
		"password": "s3cret",
		"channel":  "ws-1",
	})
	var res struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &res)

	logout := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		out := httptest.NewRecorder()
		handler.Logout(out, req)
		return out
	}

	if out := logout(res.Token); out.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body = %s", out.Code, out.Body.String())
	}

	out := logout(res.Token)
	if out.Code != http.StatusUnauthorized || errorCode(t, out) != "NO_ACTIVE_SESSION" {
		t.Fatalf("second logout: status = %d, body = %s", out.Code, out.Body.String())
	}

	out = logout("not-a-jwt")
	if out.Code != http.StatusUnauthorized || errorCode(t, out) != "INVALID_TOKEN" {
		t.Fatalf("bogus token: status = %d, body = %s", out.Code, out.Body.String())
	}

	out = logout("")
	if out.Code != http.StatusUnauthorized || errorCode(t, out) != "UNAUTHORIZED" {
		t.Fatalf("missing header: status = %d, body = %s", out.Code, out.Body.String())
	}
}
