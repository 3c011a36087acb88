package middlewares

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"citizenreport/config"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid token and aborts unauthenticated requests.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		setPrincipal(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the principal when a valid token is
// present but lets unauthenticated requests through, so anonymous browsing
// keeps working.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseToken(c); err == nil {
			setPrincipal(c, claims)
		}
		c.Next()
	}
}

func parseToken(c *gin.Context) (jwt.MapClaims, error) {
	tokenString := ""

	authHeader := c.Request.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = authHeader[7:]
	} else if authHeader != "" {
		tokenString = authHeader
	} else if cookie, err := c.Cookie("auth_token"); err == nil {
		tokenString = cookie
	}
	if tokenString == "" {
		return nil, fmt.Errorf("no authorization token provided")
	}

	jwtSecret := config.Load().JWTSecret
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		log.Printf("Token validation failed: %v", err)
		return nil, fmt.Errorf("invalid authorization token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if _, exists := claims["user_id"]; !exists {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func setPrincipal(c *gin.Context, claims jwt.MapClaims) {
	if userID, ok := claims["user_id"].(string); ok {
		c.Set("user_id", userID)
	}
	if email, ok := claims["email"].(string); ok {
		c.Set("user_email", email)
	}
}
