package dto

// MenuCategoryRecord is one top-level entry of menu/getMenu.
type MenuCategoryRecord struct {
	ID        int64            `json:"id,omitempty" yaml:"id"`
	Item      string           `json:"item" yaml:"item"`
	IsDeleted bool             `json:"isDeleted" yaml:"isDeleted"`
	Children  []MenuItemRecord `json:"children,omitempty" yaml:"children"`
}

// MenuItemRecord is a dish nested under a category.
type MenuItemRecord struct {
	ID          int64   `json:"id" yaml:"id"`
	Item        string  `json:"item" yaml:"item"`
	Price       float64 `json:"price" yaml:"price"`
	PicturePath string  `json:"picturePath,omitempty" yaml:"picturePath"`
	Description string  `json:"description,omitempty" yaml:"description"`
	IsDeleted   bool    `json:"isDeleted" yaml:"isDeleted"`
}

// OrderRecord is one entry of get/orders.
type OrderRecord struct {
	OrderID       int64             `json:"orderId"`
	CreatedAt     string            `json:"createdAt"`
	Status        string            `json:"status,omitempty"`
	OrderType     string            `json:"orderType,omitempty"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	TotalAmount   float64           `json:"totalAmount"`
	OrderItems    []OrderItemRecord `json:"orderItems"`
	CustomerName  string            `json:"customerName,omitempty"`
	PhoneNumber   string            `json:"phoneNumber,omitempty"`
	Address       string            `json:"address,omitempty"`
}

// OrderItemRecord is a purchased line inside OrderRecord.
type OrderItemRecord struct {
	Item             string  `json:"item"`
	Quantity         int     `json:"quantity"`
	PriceAtOrderTime float64 `json:"priceAtOrderTime"`
}

// CreateOrderPayload is the body of order/add.
type CreateOrderPayload struct {
	TotalAmount float64 `json:"totalAmount"`
}

// OrderLinePayload is the body of order/item/add.
type OrderLinePayload struct {
	OrderID          int64   `json:"orderID"`
	MenuID           int64   `json:"menuID"`
	Quantity         int     `json:"quantity"`
	PriceAtOrderTime float64 `json:"priceAtOrderTime"`
}
