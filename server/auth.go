package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/budget"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// NewToken signs an HS256 token identifying userID for ttl.
func NewToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// identity returns the authentication state of a request: guest without an
// Authorization header, the token subject otherwise.
func identity(c *fiber.Ctx, secret string) (budget.AuthState, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || secret == "" {
		return budget.Guest, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return budget.AuthState{}, fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
	}
	token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return budget.AuthState{}, fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return budget.AuthState{}, fiber.NewError(fiber.StatusUnauthorized, "token has no subject")
	}
	return budget.Authenticated(sub), nil
}

// withIdentity applies the identity of each request to the coordinator.
// Requests are handled one at a time since they share a single session.
func (s *Server) withIdentity(c *fiber.Ctx) error {
	want, err := identity(c, s.cfg.Secret)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coord.State() != want {
		if err := s.coord.Apply(c.UserContext(), want); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, fmt.Sprintf("cannot open the data of %s: %v", want, err))
		}
	}
	return c.Next()
}
