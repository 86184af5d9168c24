package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Product is the part of a catalog product the cart needs at insertion time.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

// CartLine is one product-and-quantity entry. Name, UnitPrice and Image are
// copied from the product when the line is created and never refreshed.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice times Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered set of lines keyed by product id. Transitions return a
// new Cart and leave the receiver untouched.
type Cart struct {
	Lines []CartLine
}

// Len is the number of distinct products in the cart.
func (c Cart) Len() int { return len(c.Lines) }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c Cart) index(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Find returns the line for productID, if any.
func (c Cart) Find(productID string) (CartLine, bool) {
	i := c.index(productID)
	if i < 0 {
		return CartLine{}, false
	}
	return c.Lines[i], true
}

// Clone copies the line slice so transitions never share backing arrays.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// Fits reports whether quantity can be merged into the line for productID
// without overflowing int.
func (c Cart) Fits(productID string, quantity int) bool {
	if quantity < 0 {
		return false
	}
	l, ok := c.Find(productID)
	return !ok || l.Quantity <= math.MaxInt-quantity
}

// Add merges quantity into the existing line for p, or appends a new line.
// Callers check Fits first; a merge that does not fit leaves the cart as is.
func (c Cart) Add(p Product, quantity int) Cart {
	next := c.Clone()
	if i := next.index(p.ID); i >= 0 {
		if !c.Fits(p.ID, quantity) {
			return c
		}
		next.Lines[i].Quantity += quantity
		return next
	}
	next.Lines = append(next.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	return next
}

// Remove drops the line for productID. The bool reports whether a line existed.
func (c Cart) Remove(productID string) (Cart, bool) {
	i := c.index(productID)
	if i < 0 {
		return c, false
	}
	lines := make([]CartLine, 0, len(c.Lines)-1)
	lines = append(lines, c.Lines[:i]...)
	lines = append(lines, c.Lines[i+1:]...)
	return Cart{Lines: lines}, true
}

// RemoveAll drops the lines for every id in productIDs. The bool reports
// whether any line existed.
func (c Cart) RemoveAll(productIDs ...string) (Cart, bool) {
	drop := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		drop[id] = struct{}{}
	}
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if _, ok := drop[l.ProductID]; !ok {
			lines = append(lines, l)
		}
	}
	if len(lines) == len(c.Lines) {
		return c, false
	}
	return Cart{Lines: lines}, true
}

// SetQuantity sets an exact quantity on an existing line. Quantities below 1
// and unknown products leave the cart unchanged.
func (c Cart) SetQuantity(productID string, quantity int) (Cart, bool) {
	if quantity < 1 {
		return c, false
	}
	i := c.index(productID)
	if i < 0 || c.Lines[i].Quantity == quantity {
		return c, false
	}
	next := c.Clone()
	next.Lines[i].Quantity = quantity
	return next, true
}

// Total is computed from the lines on every call.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
