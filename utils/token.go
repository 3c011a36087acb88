package authUtils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"citizenreport/config"
)

// GenerateAndSetToken generates a JWT token carrying the user's identity.
// The email claim lets the authorization gate derive a role without an
// extra identity lookup per request.
func GenerateAndSetToken(userID, email string) (string, error) {
	secretStr := config.Load().JWTSecret
	if secretStr == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	jwtSecret := []byte(secretStr)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Hour * 72).Unix(), // Token expires in 72 hours
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
