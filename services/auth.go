package services

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixzhu97/whatschat-sub002/models"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

// Authenticator validates the bearer credential presented at handshake time
// and resolves it to a user identity. An invalid, expired or unresolvable
// token is always reported as the same generic authentication failure.
type Authenticator struct {
	secret []byte
	users  UserDirectory
	logger *utils.Logger
}

func NewAuthenticator(secret string, users UserDirectory, logger *utils.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		users:  users,
		logger: logger,
	}
}

// Authenticate verifies the token and loads the identity record it names.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, ErrMissingCredential
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrAuthenticationFailed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthenticationFailed
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrAuthenticationFailed
	}

	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		a.logger.Error("identity lookup failed", "user_id", userID, "error", err)
		return nil, ErrAuthenticationFailed
	}
	if user == nil {
		return nil, ErrAuthenticationFailed
	}

	return user, nil
}
