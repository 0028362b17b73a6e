package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/azaliaz/bookly-storefront/internal/api/apierrors"
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/logger"
)

var ErrMissingBookID = errors.New("book id is required")

type BookWriter interface {
	CreateBook(ctx context.Context, book models.Book) (models.Book, error)
	UpdateBook(ctx context.Context, id string, book models.Book) (models.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type Sessions interface {
	Current() (models.Session, bool)
	HasRole(role string) bool
}

// Manager runs the admin book mutations. The role check here is
// advisory, it only keeps the client from issuing requests the server
// would reject; the server stays the authority on every call.
type Manager struct {
	books    BookWriter
	sessions Sessions
	valid    *validator.Validate
}

func NewManager(books BookWriter, sessions Sessions) *Manager {
	return &Manager{
		books:    books,
		sessions: sessions,
		valid:    validator.New(),
	}
}

func (m *Manager) guard() error {
	if _, ok := m.sessions.Current(); !ok {
		return apierrors.ErrAuthRequired
	}
	if !m.sessions.HasRole(models.RoleAdmin) {
		return fmt.Errorf("%w: admin role required", apierrors.ErrPermissionDenied)
	}
	return nil
}

func (m *Manager) Create(ctx context.Context, book models.Book) (models.Book, error) {
	if err := m.guard(); err != nil {
		return models.Book{}, err
	}
	if err := m.valid.Struct(book); err != nil {
		return models.Book{}, fmt.Errorf("invalid book: %w", err)
	}
	saved, err := m.books.CreateBook(ctx, book)
	if err != nil {
		return models.Book{}, err
	}
	log := logger.Get()
	log.Info().Str("id", saved.ID).Str("title", saved.Title).Msg("book created")
	return saved, nil
}

func (m *Manager) Update(ctx context.Context, id string, book models.Book) (models.Book, error) {
	if err := m.guard(); err != nil {
		return models.Book{}, err
	}
	if id == "" {
		return models.Book{}, ErrMissingBookID
	}
	if err := m.valid.Struct(book); err != nil {
		return models.Book{}, fmt.Errorf("invalid book: %w", err)
	}
	return m.books.UpdateBook(ctx, id, book)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.guard(); err != nil {
		return err
	}
	if id == "" {
		return ErrMissingBookID
	}
	return m.books.DeleteBook(ctx, id)
}
