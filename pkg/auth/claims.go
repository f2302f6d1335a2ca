package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	CustomerID *uuid.UUID
	Email      string
	Role       enums.Role
	// JTI doubles as the server-side session id when set.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID  `json:"user_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Email      string     `json:"email"`
	Role       enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the jti, which keys the server-side session record.
func (c *AccessTokenClaims) SessionID() string {
	return c.ID
}
