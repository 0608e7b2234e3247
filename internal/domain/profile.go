package domain

type OrderSummary struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Total  string `json:"total"`
	Status string `json:"status"`
}

type WishlistSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type UserProfile struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	JoinedDate   string            `json:"joinedDate,omitempty"`
	Addresses    []string          `json:"addresses"`
	OrderHistory []OrderSummary    `json:"orderHistory"`
	Wishlist     []WishlistSummary `json:"wishlist,omitempty"`
}
