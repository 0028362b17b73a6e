// Package testutil provides an in-memory bookstore API for tests. It
// serves the same routes the storefront consumes so client and
// end-to-end tests run against real HTTP.
package testutil

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/azaliaz/bookly-storefront/internal/domain/models"
	"github.com/azaliaz/bookly-storefront/internal/token"
)

const secretKey = "VerySecurKey2000Cat"

type User struct {
	ID       string
	Username string
	Password string
	Role     string
}

type Backend struct {
	mu        sync.Mutex
	books     map[string]models.Book
	users     map[string]User
	purchases map[string][]models.Purchase
	nextID    int
}

func NewBackend() *Backend {
	return &Backend{
		books:     make(map[string]models.Book),
		users:     make(map[string]User),
		purchases: make(map[string][]models.Purchase),
	}
}

// AddBook stores the book and returns its assigned id.
func (b *Backend) AddBook(book models.Book) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	book.ID = strconv.Itoa(b.nextID)
	b.books[book.ID] = book
	return book.ID
}

func (b *Backend) Book(id string) (models.Book, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	book, ok := b.books[id]
	return book, ok
}

// SetInventory overrides a book's stock, simulating purchases made by
// other sessions.
func (b *Backend) SetInventory(id string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if book, ok := b.books[id]; ok {
		book.Inventory = n
		b.books[id] = book
	}
}

func (b *Backend) AddUser(username, password, role string) User {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u := User{ID: strconv.Itoa(b.nextID), Username: username, Password: password, Role: role}
	b.users[username] = u
	return u
}

// MintToken issues a signed token for the user, expiring after ttl.
// Negative ttl produces an already expired token.
func (b *Backend) MintToken(username string, ttl time.Duration) (string, error) {
	b.mu.Lock()
	u := b.users[username]
	b.mu.Unlock()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Role:   u.Role,
		UserID: u.ID,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secretKey))
}

func (b *Backend) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	{
		books := api.Group("/books")
		books.GET("", b.listBooks)
		books.GET("/recommended", b.authMiddleware(), b.recommended)
		books.GET("/search", b.searchTitle)
		books.GET("/search/author", b.searchAuthor)
		books.GET("/search/publisher", b.searchPublisher)
		books.GET("/search/isbn", b.searchISBN)
		books.GET("/filter/price", b.filterPrice)
		books.GET("/filter/inventory", b.filterInventory)
		books.GET("/:id", b.getBook)
		books.POST("", b.authMiddleware(), b.requireAdmin, b.createBook)
		books.PUT("/:id", b.authMiddleware(), b.requireAdmin, b.updateBook)
		books.DELETE("/:id", b.authMiddleware(), b.requireAdmin, b.deleteBook)

		api.POST("/auth/login", b.login)
		api.POST("/auth/register", b.register)
		api.PUT("/users/:id", b.authMiddleware(), b.updateUser)

		api.POST("/purchase/checkout", b.authMiddleware(), b.checkout)
		api.GET("/purchase/history", b.authMiddleware(), b.history)
	}
	return router
}

func (b *Backend) authMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		claims := &token.Claims{}
		tok, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !tok.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		ctx.Set("username", claims.Subject)
		ctx.Set("role", claims.Role)
		ctx.Set("uid", claims.UserID)
		ctx.Next()
	}
}

func (b *Backend) requireAdmin(ctx *gin.Context) {
	if ctx.GetString("role") != models.RoleAdmin {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Admin role required."})
	}
}

func (b *Backend) allBooks() []models.Book {
	b.mu.Lock()
	defer b.mu.Unlock()
	books := make([]models.Book, 0, len(b.books))
	for _, book := range b.books {
		books = append(books, book)
	}
	return books
}

func (b *Backend) listBooks(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, b.allBooks())
}

func (b *Backend) getBook(ctx *gin.Context) {
	book, ok := b.Book(ctx.Param("id"))
	if !ok {
		ctx.String(http.StatusNotFound, "book not found")
		return
	}
	ctx.JSON(http.StatusOK, book)
}

func (b *Backend) filterBooks(ctx *gin.Context, keep func(models.Book) bool) {
	matched := make([]models.Book, 0)
	for _, book := range b.allBooks() {
		if keep(book) {
			matched = append(matched, book)
		}
	}
	ctx.JSON(http.StatusOK, matched)
}

func (b *Backend) searchTitle(ctx *gin.Context) {
	kw := strings.ToLower(ctx.Query("keyword"))
	b.filterBooks(ctx, func(book models.Book) bool {
		return strings.Contains(strings.ToLower(book.Title), kw)
	})
}

func (b *Backend) searchAuthor(ctx *gin.Context) {
	author := strings.ToLower(ctx.Query("author"))
	b.filterBooks(ctx, func(book models.Book) bool {
		return strings.Contains(strings.ToLower(book.Author), author)
	})
}

func (b *Backend) searchPublisher(ctx *gin.Context) {
	publisher := strings.ToLower(ctx.Query("publisher"))
	b.filterBooks(ctx, func(book models.Book) bool {
		return strings.Contains(strings.ToLower(book.Publisher), publisher)
	})
}

func (b *Backend) searchISBN(ctx *gin.Context) {
	isbn := strings.ToLower(ctx.Query("isbn"))
	b.filterBooks(ctx, func(book models.Book) bool {
		return strings.Contains(strings.ToLower(book.ISBN), isbn)
	})
}

func (b *Backend) filterPrice(ctx *gin.Context) {
	minPrice, err := strconv.ParseFloat(ctx.Query("minPrice"), 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "minPrice is required")
		return
	}
	maxPrice, err := strconv.ParseFloat(ctx.Query("maxPrice"), 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "maxPrice is required")
		return
	}
	b.filterBooks(ctx, func(book models.Book) bool {
		return book.Price >= minPrice && book.Price <= maxPrice
	})
}

func (b *Backend) filterInventory(ctx *gin.Context) {
	minInv, err := strconv.Atoi(ctx.Query("minInventory"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "minInventory is required")
		return
	}
	b.filterBooks(ctx, func(book models.Book) bool {
		return book.Inventory > minInv
	})
}

func (b *Backend) recommended(ctx *gin.Context) {
	// good enough for tests: everything in stock
	b.filterBooks(ctx, func(book models.Book) bool {
		return book.Inventory > 0
	})
}

func (b *Backend) login(ctx *gin.Context) {
	var creds models.Credentials
	if err := ctx.ShouldBindJSON(&creds); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	b.mu.Lock()
	u, ok := b.users[creds.Username]
	b.mu.Unlock()
	if !ok || u.Password != creds.Password {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization failed"})
		return
	}
	tok, err := b.MintToken(creds.Username, 3*time.Hour)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": tok})
}

func (b *Backend) register(ctx *gin.Context) {
	var reg models.Registration
	if err := ctx.ShouldBindJSON(&reg); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	b.mu.Lock()
	_, exists := b.users[reg.Username]
	b.mu.Unlock()
	if exists {
		ctx.String(http.StatusConflict, "User already exists")
		return
	}
	b.AddUser(reg.Username, reg.Password, models.RoleCustomer)
	ctx.JSON(http.StatusOK, gin.H{"message": "Registration successful"})
}

func (b *Backend) updateUser(ctx *gin.Context) {
	if ctx.GetString("uid") != ctx.Param("id") {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "cannot update another user"})
		return
	}
	var upd models.ProfileUpdate
	if err := ctx.ShouldBindJSON(&upd); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

func (b *Backend) createBook(ctx *gin.Context) {
	var book models.Book
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	book.ID = ""
	id := b.AddBook(book)
	book.ID = id
	ctx.JSON(http.StatusOK, book)
}

func (b *Backend) updateBook(ctx *gin.Context) {
	id := ctx.Param("id")
	b.mu.Lock()
	_, ok := b.books[id]
	b.mu.Unlock()
	if !ok {
		ctx.String(http.StatusNotFound, "book not found")
		return
	}
	var book models.Book
	if err := ctx.ShouldBindJSON(&book); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	book.ID = id
	b.mu.Lock()
	b.books[id] = book
	b.mu.Unlock()
	ctx.JSON(http.StatusOK, book)
}

func (b *Backend) deleteBook(ctx *gin.Context) {
	id := ctx.Param("id")
	b.mu.Lock()
	_, ok := b.books[id]
	delete(b.books, id)
	b.mu.Unlock()
	if !ok {
		ctx.String(http.StatusNotFound, "book not found")
		return
	}
	ctx.String(http.StatusOK, "Book deleted successfully.")
}

func (b *Backend) checkout(ctx *gin.Context) {
	var items []models.CartItem
	if err := ctx.ShouldBindJSON(&items); err != nil {
		ctx.String(http.StatusBadRequest, "incorrectly entered data")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	purchase := models.Purchase{
		ID:           strconv.Itoa(len(b.purchases[ctx.GetString("username")]) + 1),
		PurchaseDate: time.Now(),
	}
	for _, item := range items {
		book, ok := b.books[item.BookID]
		if !ok {
			ctx.String(http.StatusBadRequest, "Book with ID "+item.BookID+" not found.")
			return
		}
		if book.Inventory < item.Quantity {
			ctx.String(http.StatusBadRequest, "Not enough inventory for book: "+book.Title)
			return
		}
		book.Inventory -= item.Quantity
		b.books[item.BookID] = book
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Title:    book.Title,
			Author:   book.Author,
			ISBN:     book.ISBN,
			Price:    book.Price,
		})
	}
	user := ctx.GetString("username")
	b.purchases[user] = append(b.purchases[user], purchase)
	ctx.String(http.StatusOK, "Checkout successful.")
}

func (b *Backend) history(ctx *gin.Context) {
	b.mu.Lock()
	purchases := b.purchases[ctx.GetString("username")]
	b.mu.Unlock()
	if purchases == nil {
		purchases = []models.Purchase{}
	}
	ctx.JSON(http.StatusOK, purchases)
}
