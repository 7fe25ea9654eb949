package backend

// types.go defines the wire models exchanged with the backend API. All of
// these entities are owned by the backend; the storefront only ever holds
// reconciled copies.

// User is the authenticated account behind a session token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Product is a catalog entry with its sellable variants.
type Product struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl"`
	Category string    `json:"category"`
	Variants []Variant `json:"variants"`
}

// Variant is one (color, size) combination of a product. Prices are VND.
type Variant struct {
	ID        string `json:"id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Price     int64  `json:"price"`
	SalePrice int64  `json:"salePrice,omitempty"`
	Stock     int32  `json:"stock"`
}

// Category is a catalog grouping.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartItem is one line of a cart. Identity key is (ProductID, VariantID).
type CartItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Price     int64  `json:"price"`
	Quantity  int32  `json:"quantity"`
}

// Cart is a user's cart as the backend stores it.
type Cart struct {
	UserID string     `json:"userId"`
	Items  []CartItem `json:"items"`
}

// Address is a shipping address. At most one per user has IsDefault set.
type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	IsDefault bool   `json:"isDefault"`
}

// Order statuses as reported by the backend. Transitions are
// server-authoritative; the storefront only ever requests "cancel".
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Order is a placed order with its item snapshot.
type Order struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Items           []CartItem `json:"items"`
	ShippingAddress Address    `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	TotalPrice      int64      `json:"totalPrice"`
	Status          string     `json:"status"`
	CreatedAt       string     `json:"createdAt"`
}

// PlaceOrderRequest is the checkout submission.
type PlaceOrderRequest struct {
	UserID          string     `json:"userId"`
	Items           []CartItem `json:"items"`
	ShippingAddress Address    `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	TotalPrice      int64      `json:"totalPrice"`
}

// Credentials is the login submission.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup submission.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the token issued by the backend.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
