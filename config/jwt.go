package config

import "time"

// JWT settings shared by the token issuer and the auth middleware. They are
// replaced by Load.
var (
	JWTSecret     = []byte("your-secret-key-change-this-in-production")
	JWTExpiration = 24 * time.Hour
)

// SetJWT installs the signing secret and token lifetime.
func SetJWT(secret string, expiration time.Duration) {
	if secret != "" {
		JWTSecret = []byte(secret)
	}
	if expiration > 0 {
		JWTExpiration = expiration
	}
}
