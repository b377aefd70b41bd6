package domain

import "time"

// Address is the postal address attached to a registered user.
type Address struct {
	Street string `json:"street"`
	Number string `json:"number"`
	City   string `json:"city"`
	State  string `json:"state"`
}

// Store is a retail store owned by a user.
type Store struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	OwnerID     int64  `json:"owner_id,omitempty"`
	Owner       *User  `json:"owner,omitempty"`
}

// Product is an item in a store catalog.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	StoreID     int64   `json:"store_id,omitempty"`
}

// Seller attaches a user to a store so they can record sales.
type Seller struct {
	ID      int64 `json:"id"`
	StoreID int64 `json:"store_id,omitempty"`
	User    User  `json:"user"`
}

// Sale is a recorded sale of a product by a seller. The API reports the line
// total under "price".
type Sale struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id,omitempty"`
	SellerID  int64     `json:"seller_id,omitempty"`
	Quantity  int       `json:"quantity"`
	Total     float64   `json:"price"`
	Product   Product   `json:"product"`
	Seller    Seller    `json:"seller"`
	CreatedAt time.Time `json:"created_at"`
}
