package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type Product struct {
	ID          int64           `db:"id"`
	CategoryID  int64           `db:"category_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	ImageURL    string          `db:"image_url"`
	CreatedAt   string          `db:"created_at"`
}

// CategoryProducts is one home page section.
type CategoryProducts struct {
	Category Category
	Products []Product
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Hash      string `db:"password_hash"`
	Role      string `db:"role"`
	CreatedAt string `db:"created_at"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Identity is what a session remembers about a logged in user.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
