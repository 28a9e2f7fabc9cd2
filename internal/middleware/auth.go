package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"transferhub/internal/model"
	"transferhub/internal/repository"
	"transferhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorContextKey = "actor"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// --- Actor resolution ---

// actorCacheEntry stores a resolved actor with TTL so every request doesn't
// hit the users table.
type actorCacheEntry struct {
	actor     model.Actor
	expiresAt time.Time
}

var (
	actorCache    sync.Map // user id -> actorCacheEntry
	actorCacheTTL = 5 * time.Minute
)

// actorUsers holds the repository for actor lookups — set via InitActorMiddleware
var actorUsers repository.UserRepository

// InitActorMiddleware sets the user repository used to resolve token
// subjects into actors.
func InitActorMiddleware(users repository.UserRepository) {
	actorUsers = users
	actorCache.Range(func(key, _ interface{}) bool {
		actorCache.Delete(key)
		return true
	})
}

// RequireActor validates the JWT (cookie first, Authorization header as
// fallback), resolves its subject to a user record, and stores the resulting
// Actor on the request context. Token issuance happens elsewhere; this
// middleware only consumes the identity context.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
			return
		}

		actor, err := resolveActor(c, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Unknown user"))
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by RequireActor.
func ActorFrom(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}

// resolveActor returns a cached or freshly loaded actor for a user id.
func resolveActor(c *gin.Context, userID uuid.UUID) (model.Actor, error) {
	if entry, ok := actorCache.Load(userID); ok {
		cached := entry.(actorCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.actor, nil
		}
	}

	if actorUsers == nil {
		return model.Actor{}, fmt.Errorf("actor middleware not initialized")
	}

	user, err := actorUsers.GetByID(c.Request.Context(), userID)
	if err != nil {
		return model.Actor{}, err
	}

	actor := model.Actor{
		ID:           user.ID,
		Name:         user.DisplayName,
		Role:         user.Role,
		LocationType: user.LocationType,
	}
	if user.LocationID != nil {
		actor.LocationID = *user.LocationID
	}

	actorCache.Store(userID, actorCacheEntry{
		actor:     actor,
		expiresAt: time.Now().Add(actorCacheTTL),
	})

	return actor, nil
}
