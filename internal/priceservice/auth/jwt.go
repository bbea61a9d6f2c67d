// Package auth implements the price cache's bearer-token middleware. The
// wire contract comes from original_source's jwt_middleware.rs: the token
// travels in a literal "token" header, not "Authorization: Bearer", and the
// rejection body shape and strings below are load-bearing for clients.
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors original_source's Claims struct (username, name, exp).
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// errorBody is the {"success": false, "data": {"error": "..."}} shape every
// rejection uses.
func errorBody(message string) gin.H {
	return gin.H{
		"success": false,
		"data":    gin.H{"error": message},
	}
}

// Middleware validates the "token" header against secret and stores the
// parsed Claims in the gin context on success.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("token")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Token not included"))
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(classify(err)))
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// classify maps a jwt/v5 parse error onto the three original_source error
// strings, falling back to "Unauthorized" for anything else.
func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return "Invalid token included"
	default:
		return "Unauthorized"
	}
}
