package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicQuoteCreated       = "quote.created"
)

// OrderLine is the per-line part of an order.created payload.
type OrderLine struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	SizeLabel   string `json:"size_label"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// OrderCreated is published once an order and its lines are committed.
// Amounts are display-rounded strings.
type OrderCreated struct {
	OrderID        string      `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	ContactName    string      `json:"contact_name"`
	ContactEmail   string      `json:"contact_email"`
	Company        string      `json:"company,omitempty"`
	Lines          []OrderLine `json:"lines"`
	Subtotal       string      `json:"subtotal"`
	Discount       string      `json:"discount"`
	DeliveryCharge string      `json:"delivery_charge"`
	Total          string      `json:"total"`
}

// OrderStatusChanged is published after an admin moves an order along.
type OrderStatusChanged struct {
	OrderID      string `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// QuoteCreated is published when a request for quote is submitted.
type QuoteCreated struct {
	QuoteID         string `json:"quote_id"`
	Reference       string `json:"reference"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Company         string `json:"company,omitempty"`
	ProductInterest string `json:"product_interest"`
	Quantity        int64  `json:"quantity,omitempty"`
	Message         string `json:"message"`
}
