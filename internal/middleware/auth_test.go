package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vostok-trade/backend/internal/models"
	"github.com/vostok-trade/backend/internal/store"
)

type fakeVerifier struct {
	ids map[string]string
}

func (f fakeVerifier) Verify(token string) (string, error) {
	if id, ok := f.ids[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

type fakeUsers struct {
	users map[primitive.ObjectID]*models.User
	err   error
}

func (f fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func serve(h http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	known := &models.User{ID: primitive.NewObjectID(), Email: "a@x.com"}
	ghost := primitive.NewObjectID()
	verifier := fakeVerifier{ids: map[string]string{
		"good":    known.ID.Hex(),
		"ghost":   ghost.Hex(),
		"garbage": "not-an-object-id",
	}}
	users := fakeUsers{users: map[primitive.ObjectID]*models.User{known.ID: known}}

	var seen *models.User
	var attached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, attached = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(verifier, users)(next)

	rec := serve(h, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Not authorized"}`, rec.Body.String())

	rec = serve(h, "Bearer")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Not authorized"}`, rec.Body.String())

	rec = serve(h, "Bearer nope")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())

	rec = serve(h, "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, "Bearer good")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, attached)
	require.Equal(t, known, seen)

	// a valid token for a deleted user passes without a user
	rec = serve(h, "bearer ghost")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.False(t, attached)
}

func TestRequireAuthStoreError(t *testing.T) {
	id := primitive.NewObjectID()
	h := RequireAuth(
		fakeVerifier{ids: map[string]string{"t": id.Hex()}},
		fakeUsers{err: errors.New("connection reset")},
	)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := serve(h, "Bearer t")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	called := false
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	run := func(user *models.User) *httptest.ResponseRecorder {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if user != nil {
			req = req.WithContext(WithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := run(nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)

	rec = run(&models.User{Role: models.RoleUser})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"message":"Forbidden"}`, rec.Body.String())

	rec = run(&models.User{Role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, called)
}

func TestUserFromContextNil(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	require.False(t, ok)

	_, ok = UserFromContext(WithUser(context.Background(), nil))
	require.False(t, ok)
}
