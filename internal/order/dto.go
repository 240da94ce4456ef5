package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// Contact is the buyer contact captured at checkout.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
}

// Address is the shipping address captured at checkout.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Item is a persisted order line.
type Item struct {
	ID              string          `json:"id"`
	VariantID       string          `json:"variant_id,omitempty"`
	SKU             string          `json:"sku"`
	ProductName     string          `json:"product_name"`
	SizeLabel       string          `json:"size_label"`
	UnitPrice       pricing.Money   `json:"unit_price"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineDiscount    pricing.Money   `json:"line_discount"`
	LineTotal       pricing.Money   `json:"line_total"`
}

// Order is the API view of an order. Amounts are display-rounded.
type Order struct {
	ID             string        `json:"id"`
	OrderNumber    string        `json:"order_number"`
	Status         Status        `json:"status"`
	CustomerID     string        `json:"customer_id,omitempty"`
	Contact        Contact       `json:"contact"`
	Shipping       Address       `json:"shipping"`
	Notes          string        `json:"notes,omitempty"`
	AdminNotes     string        `json:"admin_notes,omitempty"`
	Subtotal       pricing.Money `json:"subtotal"`
	Discount       pricing.Money `json:"discount"`
	DeliveryCharge pricing.Money `json:"delivery_charge"`
	TotalAmount    pricing.Money `json:"total_amount"`
	Items          []Item        `json:"items,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// FromRow builds the view from stored rows. items may be nil for list views.
func FromRow(o dbgen.Order, items []dbgen.OrderItem) Order {
	out := Order{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		Status:      Status(o.Status),
		Contact: Contact{
			Name:    o.ContactName,
			Email:   o.ContactEmail,
			Phone:   o.ContactPhone,
			Company: o.Company,
		},
		Shipping: Address{
			Line1:      o.ShipLine1,
			Line2:      o.ShipLine2,
			City:       o.ShipCity,
			State:      o.ShipState,
			PostalCode: o.ShipPostalCode,
			Country:    o.ShipCountry,
		},
		Notes:          o.Notes,
		AdminNotes:     o.AdminNotes,
		Subtotal:       pricing.NewMoney(o.Subtotal),
		Discount:       pricing.NewMoney(o.Discount),
		DeliveryCharge: pricing.NewMoney(o.DeliveryCharge),
		TotalAmount:    pricing.NewMoney(o.TotalAmount),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.CustomerID.Valid {
		out.CustomerID = uuid.UUID(o.CustomerID.Bytes).String()
	}
	for _, it := range items {
		line := Item{
			ID:              it.ID.String(),
			SKU:             it.Sku,
			ProductName:     it.ProductName,
			SizeLabel:       it.SizeLabel,
			UnitPrice:       pricing.NewMoney(it.UnitPrice),
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
			LineDiscount:    pricing.NewMoney(it.LineDiscount),
			LineTotal:       pricing.NewMoney(it.LineTotal),
		}
		if it.VariantID.Valid {
			line.VariantID = uuid.UUID(it.VariantID.Bytes).String()
		}
		out.Items = append(out.Items, line)
	}
	return out
}

// ForCustomer hides fields meant for staff only.
func (o Order) ForCustomer() Order {
	o.AdminNotes = ""
	return o
}
