package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookly-storefront/internal/domain/models"
)

// fakeSearcher records which query endpoint a search was routed to.
type fakeSearcher struct {
	called string
	books  []models.Book
	err    error
}

func (f *fakeSearcher) hit(name string) ([]models.Book, error) {
	f.called = name
	return f.books, f.err
}

func (f *fakeSearcher) ListBooks(context.Context) ([]models.Book, error) {
	return f.hit("list")
}
func (f *fakeSearcher) SearchTitle(_ context.Context, kw string) ([]models.Book, error) {
	return f.hit("title:" + kw)
}
func (f *fakeSearcher) SearchAuthor(_ context.Context, a string) ([]models.Book, error) {
	return f.hit("author:" + a)
}
func (f *fakeSearcher) SearchPublisher(_ context.Context, p string) ([]models.Book, error) {
	return f.hit("publisher:" + p)
}
func (f *fakeSearcher) SearchISBN(_ context.Context, i string) ([]models.Book, error) {
	return f.hit("isbn:" + i)
}
func (f *fakeSearcher) FilterPrice(_ context.Context, _, _ float64) ([]models.Book, error) {
	return f.hit("price")
}
func (f *fakeSearcher) FilterInventory(_ context.Context, _ int) ([]models.Book, error) {
	return f.hit("inventory")
}
func (f *fakeSearcher) RecommendedBooks(context.Context) ([]models.Book, error) {
	return f.hit("recommended")
}

func TestSearch_Dispatch(t *testing.T) {
	tests := []struct {
		query Query
		want  string
	}{
		{Query{Kind: KindTitle, Keyword: "dune"}, "title:dune"},
		{Query{Kind: KindAuthor, Keyword: "herbert"}, "author:herbert"},
		{Query{Kind: KindPublisher, Keyword: "ace"}, "publisher:ace"},
		{Query{Kind: KindISBN, Keyword: "978"}, "isbn:978"},
		{Query{Kind: KindPrice, MinPrice: 1, MaxPrice: 2}, "price"},
		{Query{Kind: KindInventory, MinInventory: 3}, "inventory"},
	}
	for _, tc := range tests {
		f := &fakeSearcher{}
		v := NewView(f)
		_, err := v.Search(context.Background(), tc.query)
		require.NoError(t, err)
		assert.Equal(t, tc.want, f.called)
	}
}

func TestSearch_UnknownKind(t *testing.T) {
	v := NewView(&fakeSearcher{})
	_, err := v.Search(context.Background(), Query{Kind: "genre"})
	assert.Error(t, err)
}

func TestSearch_ErrorsSurface(t *testing.T) {
	f := &fakeSearcher{err: errors.New("backend down")}
	v := NewView(f)
	_, err := v.Search(context.Background(), Query{Kind: KindTitle, Keyword: "x"})
	assert.Error(t, err)
}

func TestActionsFor(t *testing.T) {
	inStock := models.Book{Title: "Dune", Inventory: 3}
	soldOut := models.Book{Title: "Solaris", Inventory: 0}

	customer := models.Session{Role: models.RoleCustomer}
	admin := models.Session{Role: models.RoleAdmin}
	guest := models.Session{}

	assert.Equal(t, []Action{ActionAddToCart}, ActionsFor(customer, inStock))
	assert.Empty(t, ActionsFor(customer, soldOut))

	// admins manage books, they never see the cart action
	assert.Equal(t, []Action{ActionEdit, ActionDelete}, ActionsFor(admin, inStock))
	assert.Equal(t, []Action{ActionEdit, ActionDelete}, ActionsFor(admin, soldOut))

	assert.Equal(t, []Action{ActionAddToCart}, ActionsFor(guest, inStock))
}

func TestRender(t *testing.T) {
	books := []models.Book{
		{ID: "1", Title: "Dune", Author: "Frank Herbert", ISBN: "978", Price: 9.99, Inventory: 3},
	}
	out := Render(books, models.Session{Role: models.RoleCustomer})
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "add to cart")

	out = Render(books, models.Session{Role: models.RoleAdmin})
	assert.Contains(t, out, "edit")
	assert.NotContains(t, out, "add to cart")

	assert.Equal(t, "No books found.\n", Render(nil, models.Session{}))
}
