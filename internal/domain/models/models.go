package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Book struct {
	ID          string  `json:"id,omitempty"`
	ISBN        string  `json:"isbn" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Description string  `json:"description,omitempty"`
	Publisher   string  `json:"publisher,omitempty"`
	PictureURL  string  `json:"pictureUrl,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Inventory   int     `json:"inventory" validate:"gte=0"`
}

type CartItem struct {
	BookID   string `json:"bookId"`
	Quantity int    `json:"quantity"`
}

// Session is derived from the decoded bearer token, never stored directly.
type Session struct {
	Subject string
	Role    string
	UserID  string
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type Registration struct {
	Username  string `json:"username" validate:"required,min=3"`
	Password  string `json:"password" validate:"required,min=8"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProfileUpdate struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type PurchaseItem struct {
	BookID   string  `json:"bookId"`
	Quantity int     `json:"quantity"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	ISBN     string  `json:"isbn"`
	Price    float64 `json:"price"`
}

type Purchase struct {
	ID           string         `json:"id"`
	PurchaseDate time.Time      `json:"purchaseDate"`
	Items        []PurchaseItem `json:"items"`
}
