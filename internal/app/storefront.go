package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/azaliaz/bookly-storefront/internal/admin"
	"github.com/azaliaz/bookly-storefront/internal/api"
	"github.com/azaliaz/bookly-storefront/internal/api/apierrors"
	"github.com/azaliaz/bookly-storefront/internal/cart"
	"github.com/azaliaz/bookly-storefront/internal/catalog"
	"github.com/azaliaz/bookly-storefront/internal/checkout"
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/logger"
	"github.com/azaliaz/bookly-storefront/internal/session"
	"github.com/azaliaz/bookly-storefront/internal/token"
)

// Storefront binds the cart, session and API flows behind the
// operations the UI exposes. The cart is the only state that survives
// across views; listings are re-fetched on demand.
type Storefront struct {
	client   *api.Client
	tokens   *token.Store
	sessions *session.Resolver
	cart     *cart.Cart
	catalog  *catalog.View
	checkout *checkout.Flow
	admin    *admin.Manager
	valid    *validator.Validate
}

func New(client *api.Client, tokens *token.Store) *Storefront {
	sessions := session.NewResolver(tokens)
	c := cart.New()
	return &Storefront{
		client:   client,
		tokens:   tokens,
		sessions: sessions,
		cart:     c,
		catalog:  catalog.NewView(client),
		checkout: checkout.NewFlow(client, c),
		admin:    admin.NewManager(client, sessions),
		valid:    validator.New(),
	}
}

func (s *Storefront) Session() (models.Session, bool) {
	return s.sessions.Current()
}

func (s *Storefront) Cart() *cart.Cart {
	return s.cart
}

// Login exchanges credentials for a token and persists it.
func (s *Storefront) Login(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: username, Password: password}
	if err := s.valid.Struct(creds); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	tok, err := s.client.Login(ctx, creds)
	if err != nil {
		return err
	}
	if err := s.tokens.Save(tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	sess, _ := s.sessions.Current()
	log := logger.Get()
	log.Info().Str("user", sess.Subject).Str("role", sess.Role).Msg("logged in")
	return nil
}

// Logout drops both the token and the cart.
func (s *Storefront) Logout() error {
	s.cart.Clear()
	return s.tokens.Clear()
}

func (s *Storefront) Register(ctx context.Context, reg models.Registration) error {
	if err := s.valid.Struct(reg); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}
	return s.client.Register(ctx, reg)
}

func (s *Storefront) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	sess, ok := s.sessions.Current()
	if !ok {
		return apierrors.ErrAuthRequired
	}
	if err := s.valid.Struct(upd); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return s.client.UpdateProfile(ctx, sess.UserID, upd)
}

func (s *Storefront) Browse(ctx context.Context) (string, error) {
	books, err := s.catalog.Browse(ctx)
	if err != nil {
		return "", err
	}
	return s.renderListing(books), nil
}

func (s *Storefront) Search(ctx context.Context, q catalog.Query) (string, error) {
	books, err := s.catalog.Search(ctx, q)
	if err != nil {
		return "", err
	}
	return s.renderListing(books), nil
}

func (s *Storefront) Recommended(ctx context.Context) (string, error) {
	books, err := s.catalog.Recommended(ctx)
	if err != nil {
		return "", err
	}
	return s.renderListing(books), nil
}

func (s *Storefront) renderListing(books []models.Book) string {
	sess, _ := s.sessions.Current()
	return catalog.Render(books, sess)
}

// AddToCart fetches the book so the inventory check runs against the
// live server value, then adds one unit.
func (s *Storefront) AddToCart(ctx context.Context, bookID string) error {
	book, err := s.client.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if err := s.cart.Add(bookID, book.Inventory); err != nil {
		return fmt.Errorf("%q: %w", book.Title, err)
	}
	return nil
}

func (s *Storefront) SetQuantity(ctx context.Context, bookID string, qty int) error {
	book, err := s.client.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if err := s.cart.SetQuantity(bookID, qty, book.Inventory); err != nil {
		return fmt.Errorf("%q: %w", book.Title, err)
	}
	return nil
}

func (s *Storefront) RemoveFromCart(bookID string) {
	s.cart.Remove(bookID)
}

// ViewCart re-fetches every book for current prices and renders the
// cart with a running total.
func (s *Storefront) ViewCart(ctx context.Context) (string, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return "Your cart is empty.\n", nil
	}
	var b strings.Builder
	prices := make(map[string]float64, len(items))
	for _, item := range items {
		book, err := s.client.GetBook(ctx, item.BookID)
		if err != nil {
			return "", err
		}
		prices[item.BookID] = book.Price
		fmt.Fprintf(&b, "[%s] %s x%d  $%.2f\n", book.ID, book.Title, item.Quantity, book.Price*float64(item.Quantity))
	}
	total := s.cart.TotalCost(func(id string) float64 { return prices[id] })
	fmt.Fprintf(&b, "%d items, total $%.2f\n", s.cart.TotalItems(), total)
	return b.String(), nil
}

// Checkout runs the all-or-nothing flow; on success the cart is empty.
func (s *Storefront) Checkout(ctx context.Context) (string, error) {
	if _, ok := s.sessions.Current(); !ok {
		return "", apierrors.ErrAuthRequired
	}
	if err := s.checkout.Run(ctx); err != nil {
		return "", err
	}
	return "Checkout successful!\n", nil
}

func (s *Storefront) CheckoutState() checkout.State {
	return s.checkout.State()
}

func (s *Storefront) History(ctx context.Context) (string, error) {
	purchases, err := s.client.PurchaseHistory(ctx)
	if err != nil {
		return "", err
	}
	if len(purchases) == 0 {
		return "No purchases yet.\n", nil
	}
	var b strings.Builder
	for _, p := range purchases {
		fmt.Fprintf(&b, "purchase %s on %s\n", p.ID, p.PurchaseDate.Format("2006-01-02 15:04"))
		for _, item := range p.Items {
			fmt.Fprintf(&b, "    %s x%d  $%.2f\n", item.Title, item.Quantity, item.Price*float64(item.Quantity))
		}
	}
	return b.String(), nil
}

func (s *Storefront) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	return s.admin.Create(ctx, book)
}

func (s *Storefront) UpdateBook(ctx context.Context, id string, book models.Book) (models.Book, error) {
	return s.admin.Update(ctx, id, book)
}

func (s *Storefront) DeleteBook(ctx context.Context, id string) error {
	return s.admin.Delete(ctx, id)
}
