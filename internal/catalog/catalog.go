package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/azaliaz/bookly-storefront/internal/domain/models"
)

type Kind string

const (
	KindTitle     Kind = "title"
	KindAuthor    Kind = "author"
	KindPublisher Kind = "publisher"
	KindISBN      Kind = "isbn"
	KindPrice     Kind = "price"
	KindInventory Kind = "inventory"
)

// Query is one search form submission: a kind plus the fields that
// kind uses.
type Query struct {
	Kind         Kind
	Keyword      string
	MinPrice     float64
	MaxPrice     float64
	MinInventory int
}

type Searcher interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	SearchTitle(ctx context.Context, keyword string) ([]models.Book, error)
	SearchAuthor(ctx context.Context, author string) ([]models.Book, error)
	SearchPublisher(ctx context.Context, publisher string) ([]models.Book, error)
	SearchISBN(ctx context.Context, isbn string) ([]models.Book, error)
	FilterPrice(ctx context.Context, minPrice, maxPrice float64) ([]models.Book, error)
	FilterInventory(ctx context.Context, minInventory int) ([]models.Book, error)
	RecommendedBooks(ctx context.Context) ([]models.Book, error)
}

// View fetches book listings; it holds no state between calls.
type View struct {
	books Searcher
}

func NewView(books Searcher) *View {
	return &View{books: books}
}

func (v *View) Browse(ctx context.Context) ([]models.Book, error) {
	return v.books.ListBooks(ctx)
}

func (v *View) Recommended(ctx context.Context) ([]models.Book, error) {
	return v.books.RecommendedBooks(ctx)
}

func (v *View) Search(ctx context.Context, q Query) ([]models.Book, error) {
	switch q.Kind {
	case KindTitle:
		return v.books.SearchTitle(ctx, q.Keyword)
	case KindAuthor:
		return v.books.SearchAuthor(ctx, q.Keyword)
	case KindPublisher:
		return v.books.SearchPublisher(ctx, q.Keyword)
	case KindISBN:
		return v.books.SearchISBN(ctx, q.Keyword)
	case KindPrice:
		return v.books.FilterPrice(ctx, q.MinPrice, q.MaxPrice)
	case KindInventory:
		return v.books.FilterInventory(ctx, q.MinInventory)
	default:
		return nil, fmt.Errorf("unknown search type %q", q.Kind)
	}
}

type Action string

const (
	ActionAddToCart Action = "add to cart"
	ActionEdit      Action = "edit"
	ActionDelete    Action = "delete"
)

// ActionsFor decides which controls a viewer gets for a book. Admins
// get edit/delete, everyone else gets add-to-cart while stock lasts;
// the two sets are never shown together. The check is advisory only,
// the server enforces authorization on every mutating call.
func ActionsFor(sess models.Session, book models.Book) []Action {
	if sess.Role == models.RoleAdmin {
		return []Action{ActionEdit, ActionDelete}
	}
	if book.Inventory > 0 {
		return []Action{ActionAddToCart}
	}
	return nil
}

// Render formats a listing the way the storefront shows it.
func Render(books []models.Book, sess models.Session) string {
	if len(books) == 0 {
		return "No books found.\n"
	}
	var b strings.Builder
	for _, book := range books {
		fmt.Fprintf(&b, "[%s] %s by %s\n", book.ID, book.Title, book.Author)
		if book.Publisher != "" {
			fmt.Fprintf(&b, "    publisher: %s  isbn: %s\n", book.Publisher, book.ISBN)
		} else {
			fmt.Fprintf(&b, "    isbn: %s\n", book.ISBN)
		}
		fmt.Fprintf(&b, "    $%.2f, %d in stock\n", book.Price, book.Inventory)
		if actions := ActionsFor(sess, book); len(actions) > 0 {
			parts := make([]string, len(actions))
			for i, a := range actions {
				parts[i] = string(a)
			}
			fmt.Fprintf(&b, "    actions: %s\n", strings.Join(parts, ", "))
		}
	}
	return b.String()
}
