package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"transferhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	calls int
	user  *model.User
}

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.calls++
	if s.user == nil || s.user.ID != id {
		return nil, errors.New("user not found")
	}
	return s.user, nil
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func authedContext(t *testing.T, token string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/transfer-requests", nil)
	if token != "" {
		c.Request.Header.Set("Authorization", "Bearer "+token)
	}
	return w, c
}

func TestRequireActorResolvesAndCachesActor(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")

	locationID := uuid.New()
	user := &model.User{
		ID:           uuid.New(),
		DisplayName:  "Wally Packer",
		Role:         model.RoleLocationStaff,
		LocationType: model.LocationWarehouse,
		LocationID:   &locationID,
	}
	repo := &stubUserRepo{user: user}
	InitActorMiddleware(repo)

	handle := RequireActor()
	token := signedToken(t, user.ID.String())

	_, c := authedContext(t, token)
	handle(c)
	require.False(t, c.IsAborted())

	actor, ok := ActorFrom(c)
	require.True(t, ok)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, "Wally Packer", actor.Name)
	assert.Equal(t, model.RoleLocationStaff, actor.Role)
	assert.Equal(t, model.LocationWarehouse, actor.LocationType)
	assert.Equal(t, locationID, actor.LocationID)
	assert.Equal(t, 1, repo.calls)

	// second request within the TTL is served from the cache
	_, c2 := authedContext(t, token)
	handle(c2)
	require.False(t, c2.IsAborted())
	assert.Equal(t, 1, repo.calls)

	// re-initializing drops the cache, so the next request hits the repo
	InitActorMiddleware(repo)
	_, c3 := authedContext(t, token)
	handle(c3)
	require.False(t, c3.IsAborted())
	assert.Equal(t, 2, repo.calls)
}

func TestRequireActorRejections(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	repo := &stubUserRepo{}
	InitActorMiddleware(repo)
	handle := RequireActor()

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not.a.token"},
		{"unknown subject", signedToken(t, uuid.New().String())},
		{"non-uuid subject", signedToken(t, "somebody")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := authedContext(t, tt.token)
			handle(c)
			assert.True(t, c.IsAborted())
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			_, ok := ActorFrom(c)
			assert.False(t, ok)
		})
	}
}
