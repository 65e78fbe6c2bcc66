package photostream

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// ensureTokenID gives the claims a jti when the caller did not set one
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}

// NewUserID derives a deterministic UUID from the account email so the
// same email always registers under the same id. Falls back to a
// random UUID if derivation fails.
func NewUserID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(email); err == nil {
		return id
	}
	return uuid.New()
}
