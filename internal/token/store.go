package token

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/logger"
)

// tokenFile is the fixed key the bearer token is persisted under.
const tokenFile = "auth_token"

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrMalformedToken = errors.New("malformed token")
)

type Claims struct {
	jwt.RegisteredClaims
	Role   string `json:"role"`
	UserID string `json:"userId"`
}

// Store persists the bearer token in a single file. Decoding never
// verifies the signature, that is the server's job; the store only
// needs the payload claims and the expiry.
type Store struct {
	path string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, tokenFile)}
}

func (s *Store) Save(tok string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(tok), 0o600)
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Read returns the persisted token. A token that is missing, malformed
// or past its expiry reports absence; the last two also clear storage
// so the next Read is cheap.
func (s *Store) Read() (string, bool) {
	log := logger.Get()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(raw))
	if _, err := Decode(tok); err != nil {
		log.Debug().Err(err).Msg("stored token rejected, clearing")
		if err := s.Clear(); err != nil {
			log.Error().Err(err).Msg("clear token storage failed")
		}
		return "", false
	}
	return tok, true
}

// Decode parses the token payload into a Session without verifying the
// signature. Tokens without an exp claim or with one in the past are
// rejected.
func Decode(tok string) (models.Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return models.Session{}, ErrMalformedToken
	}
	if claims.ExpiresAt == nil {
		return models.Session{}, ErrMalformedToken
	}
	if claims.ExpiresAt.Before(time.Now()) {
		return models.Session{}, ErrTokenExpired
	}
	return models.Session{
		Subject: claims.Subject,
		Role:    claims.Role,
		UserID:  claims.UserID,
	}, nil
}
