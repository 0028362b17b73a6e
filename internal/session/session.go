package session

import (
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/token"
)

type TokenReader interface {
	Read() (string, bool)
}

// Resolver derives the current user identity from the token store.
// It holds no state of its own; every call re-reads the token so an
// expired or cleared token is picked up immediately.
type Resolver struct {
	tokens TokenReader
}

func NewResolver(tokens TokenReader) *Resolver {
	return &Resolver{tokens: tokens}
}

// Current rebuilds the session from the stored token. Absent or
// undecodable tokens yield ok=false, never an error.
func (r *Resolver) Current() (models.Session, bool) {
	tok, ok := r.tokens.Read()
	if !ok {
		return models.Session{}, false
	}
	sess, err := token.Decode(tok)
	if err != nil {
		return models.Session{}, false
	}
	return sess, true
}

func (r *Resolver) HasRole(role string) bool {
	sess, ok := r.Current()
	return ok && sess.Role == role
}
