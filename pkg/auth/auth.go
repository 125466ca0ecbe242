// Package auth turns caller credentials into a store principal.
//
// Passwords are verified against the bcrypt hash held by the resource store.
// Successful verifications are cached for a short TTL so repeated calls with
// the same credentials skip the bcrypt comparison. Failures are never cached.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

// AnonymousPrincipalID is the principal used for calls without credentials
// when anonymous access is enabled.
const AnonymousPrincipalID = "anonymous"

// UserSource looks up users. resource.Store satisfies it.
type UserSource interface {
	LookupUser(ctx context.Context, username string) (resource.Principal, []byte, error)
}

// Config configures an Authenticator.
type Config struct {
	// CacheTTL is how long a verified login is remembered. Zero disables
	// caching. Default (via config package): 5m
	CacheTTL time.Duration

	// AllowAnonymous accepts calls with an empty username as the anonymous
	// principal.
	AllowAnonymous bool
}

// Authenticator verifies credentials.
type Authenticator struct {
	users  UserSource
	cache  *cache.Cache
	config Config
}

func New(users UserSource, config Config) *Authenticator {
	a := &Authenticator{users: users, config: config}
	if config.CacheTTL > 0 {
		a.cache = cache.New(config.CacheTTL, 2*config.CacheTTL)
	}
	return a
}

// Authenticate returns the principal for creds.
//
// Returns a resource.ErrAuthFailed StoreError for unknown users and wrong
// passwords, without telling the two apart.
func (a *Authenticator) Authenticate(ctx context.Context, creds resource.Credentials) (resource.Principal, error) {
	if creds.Username == "" {
		if a.config.AllowAnonymous {
			return resource.Principal{ID: AnonymousPrincipalID, Name: AnonymousPrincipalID}, nil
		}
		return resource.Principal{}, authFailed("")
	}

	key := cacheKey(creds)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			return cached.(resource.Principal), nil
		}
	}

	principal, hash, err := a.users.LookupUser(ctx, creds.Username)
	if err != nil {
		if resource.IsNotFound(err) {
			logger.Debug("Authentication failed: unknown user %q", creds.Username)
			return resource.Principal{}, authFailed(creds.Username)
		}
		return resource.Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)); err != nil {
		logger.Debug("Authentication failed: bad password for %q", creds.Username)
		return resource.Principal{}, authFailed(creds.Username)
	}

	if a.cache != nil {
		a.cache.SetDefault(key, principal)
	}
	return principal, nil
}

// Forget drops any cached login for username.
func (a *Authenticator) Forget(username string) {
	if a.cache == nil {
		return
	}
	prefix := username + ":"
	for key := range a.cache.Items() {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			a.cache.Delete(key)
		}
	}
}

func authFailed(username string) error {
	return resource.NewError(resource.ErrAuthFailed, "authentication failed", username)
}

// cacheKey binds username and password without keeping the password.
func cacheKey(creds resource.Credentials) string {
	sum := sha256.Sum256([]byte(creds.Username + "\x00" + creds.Password))
	return creds.Username + ":" + hex.EncodeToString(sum[:])
}
