package models

import "time"

// AllCategories is the wildcard category shown before the real ones.
const AllCategories = "All"

// MenuItem is one orderable dish.
type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
}

// CartLine is one menu item in the cart. Quantity is always at least 1.
type CartLine struct {
	ItemID    int64   `json:"itemId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is UnitPrice times Quantity.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Order defaults applied when the backend omits a value.
const (
	DefaultOrderType     = "Delivery"
	DefaultPaymentMethod = "Cash"
	DefaultOrderStatus   = "Pending"
)

// Order is a placed order as the client displays it.
type Order struct {
	ID            int64       `json:"id"`
	CreatedAt     time.Time   `json:"createdAt"`
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	Status        string      `json:"status"`
	OrderType     string      `json:"orderType"`
	PaymentMethod string      `json:"paymentMethod"`
	TotalAmount   float64     `json:"totalAmount"`
	Lines         []OrderLine `json:"items"`
	Customer      Customer    `json:"customer"`
}

// OrderLine records what was bought and at which price.
type OrderLine struct {
	Name             string  `json:"name"`
	Quantity         int     `json:"quantity"`
	PriceAtOrderTime float64 `json:"priceAtOrderTime"`
}

// Customer is the delivery snapshot stored with an order.
type Customer struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}
