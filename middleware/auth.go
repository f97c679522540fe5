package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	userRepo "medibook/database/repository/user"
	"medibook/models"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Context keys populated by AuthRequired.
const (
	CtxUserID = "userID"
	CtxRole   = "role"
)

// AuthRequired validates the bearer token and loads the caller's identity
// into the request context. Tokens are checked against the Redis auth cache
// first (which also implements logout revocation); on a cache miss the user
// record is looked up and the hash re-cached.
func AuthRequired(repo userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, roleStr, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid or expired token"})
			return
		}
		role, ok := models.ParseRole(roleStr)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Invalid or expired token"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCachePrefix + userID
		ctx := context.Background()
		authCache := utils.GetAuthCacheClient()

		cachedHash, err := authCache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cachedHash != computedHash {
				c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Token revoked"})
				return
			}
			c.Set(CtxUserID, userID)
			c.Set(CtxRole, role)
			c.Next()
			return
		}
		if err != redis.Nil {
			utils.GetLogger().Warn("Auth cache lookup failed, falling back to DB", zap.Error(err))
		}

		// Cache miss: confirm the account still exists, then re-cache.
		usr, lookupErr := repo.GetByID(userID)
		if lookupErr != nil || usr == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication error"})
			return
		}
		_ = authCache.Set(ctx, cacheKey, computedHash, time.Hour).Err()

		c.Set(CtxUserID, userID)
		c.Set(CtxRole, usr.Role)
		c.Next()
	}
}

// AdminRequired gates a route group to administrators. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(CtxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
			return
		}
		role, ok := roleVal.(models.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Message: "Authentication required"})
			return
		}

		switch role {
		case models.RoleAdmin:
			c.Next()
		case models.RolePatient:
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Admin access required"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Admin access required"})
		}
	}
}

// Identity extracts the authenticated caller from the request context.
func Identity(c *gin.Context) (string, models.Role, bool) {
	idVal, ok := c.Get(CtxUserID)
	if !ok {
		return "", "", false
	}
	roleVal, ok := c.Get(CtxRole)
	if !ok {
		return "", "", false
	}
	id, idOK := idVal.(string)
	role, roleOK := roleVal.(models.Role)
	if !idOK || !roleOK {
		return "", "", false
	}
	return id, role, true
}
