package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/azaliaz/bookly-storefront/internal/api/apierrors"
	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/logger"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the persisted bearer token, if any.
type TokenSource interface {
	Read() (string, bool)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
}

// Client talks to the bookstore REST API. Responses outside 2xx are
// mapped onto the apierrors taxonomy; nothing is retried.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  cfg.Tokens,
	}
}

// do runs one JSON request. With authed set, a missing token
// short-circuits to ErrAuthRequired before anything goes on the wire.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any, authed bool) error {
	log := logger.Get()

	var tok string
	if c.tokens != nil {
		tok, _ = c.tokens.Read()
	}
	if authed && tok == "" {
		return apierrors.ErrAuthRequired
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)

	log.Debug().Str("method", method).Str("path", path).Str("request_id", reqID).Msg("api request")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		err := apierrors.FromStatus(resp.StatusCode, strings.TrimSpace(string(raw)))
		log.Debug().Int("status", resp.StatusCode).Str("request_id", reqID).Err(err).Msg("api error")
		return err
	}
	if target == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := c.do(ctx, http.MethodGet, "/books", nil, nil, &books, false); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (models.Book, error) {
	var book models.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, nil, &book, false); err != nil {
		return models.Book{}, err
	}
	return book, nil
}

func (c *Client) searchBooks(ctx context.Context, path string, query url.Values) ([]models.Book, error) {
	var books []models.Book
	if err := c.do(ctx, http.MethodGet, path, query, nil, &books, false); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) SearchTitle(ctx context.Context, keyword string) ([]models.Book, error) {
	return c.searchBooks(ctx, "/books/search", url.Values{"keyword": {keyword}})
}

func (c *Client) SearchAuthor(ctx context.Context, author string) ([]models.Book, error) {
	return c.searchBooks(ctx, "/books/search/author", url.Values{"author": {author}})
}

func (c *Client) SearchPublisher(ctx context.Context, publisher string) ([]models.Book, error) {
	return c.searchBooks(ctx, "/books/search/publisher", url.Values{"publisher": {publisher}})
}

func (c *Client) SearchISBN(ctx context.Context, isbn string) ([]models.Book, error) {
	return c.searchBooks(ctx, "/books/search/isbn", url.Values{"isbn": {isbn}})
}

func (c *Client) FilterPrice(ctx context.Context, minPrice, maxPrice float64) ([]models.Book, error) {
	return c.searchBooks(ctx, "/books/filter/price", url.Values{
		"minPrice": {strconv.FormatFloat(minPrice, 'f', -1, 64)},
		"maxPrice": {strconv.FormatFloat(maxPrice, 'f', -1, 64)},
	})
}

func (c *Client) FilterInventory(ctx context.Context, minInventory int) ([]models.Book, error) {
	return c.searchBooks(ctx, "/books/filter/inventory", url.Values{
		"minInventory": {strconv.Itoa(minInventory)},
	})
}

func (c *Client) RecommendedBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := c.do(ctx, http.MethodGet, "/books/recommended", nil, nil, &books, true); err != nil {
		return nil, err
	}
	return books, nil
}

// Login returns the bearer token issued by the server.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp, false); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, reg, nil, false)
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID), nil, upd, nil, true)
}

func (c *Client) CreateBook(ctx context.Context, book models.Book) (models.Book, error) {
	var saved models.Book
	if err := c.do(ctx, http.MethodPost, "/books", nil, book, &saved, true); err != nil {
		return models.Book{}, err
	}
	return saved, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, book models.Book) (models.Book, error) {
	var saved models.Book
	if err := c.do(ctx, http.MethodPut, "/books/"+url.PathEscape(id), nil, book, &saved, true); err != nil {
		return models.Book{}, err
	}
	return saved, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil, nil, true)
}

// Checkout submits the full cart snapshot in one request.
func (c *Client) Checkout(ctx context.Context, items []models.CartItem) error {
	return c.do(ctx, http.MethodPost, "/purchase/checkout", nil, items, nil, true)
}

func (c *Client) PurchaseHistory(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	if err := c.do(ctx, http.MethodGet, "/purchase/history", nil, nil, &purchases, true); err != nil {
		return nil, err
	}
	return purchases, nil
}
