package domain

import "github.com/shopspring/decimal"

// QuoteLine compares a cart line with the product's current catalog price.
type QuoteLine struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CartPrice    decimal.Decimal `json:"cartPrice"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	PriceChanged bool            `json:"priceChanged"`
	Unavailable  bool            `json:"unavailable"`
}

type Quote struct {
	Lines     []QuoteLine     `json:"lines"`
	CartTotal decimal.Decimal `json:"cartTotal"`
	Total     decimal.Decimal `json:"total"`
}

func (q Quote) HasChanges() bool {
	for _, l := range q.Lines {
		if l.PriceChanged || l.Unavailable {
			return true
		}
	}
	return false
}

type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Details struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"`
}

// Receipt is the outcome of a placed order. Warning is set when the order
// went through but the cart could not be cleared durably.
type Receipt struct {
	OrderID    string          `json:"orderId"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Warning    string          `json:"warning,omitempty"`
}
