package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StorageKey is the single key the serialized line sequence lives under.
const StorageKey = "cart"

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// EncodeSnapshot serializes the line sequence. The total is not stored.
func EncodeSnapshot(c Cart) ([]byte, error) {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return json.Marshal(lines)
}

// DecodeSnapshot parses a stored line sequence and checks the cart
// invariants. Any violation is reported as ErrMalformedSnapshot.
func DecodeSnapshot(data []byte) (Cart, error) {
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if l.ProductID == "" {
			return Cart{}, fmt.Errorf("%w: line %d has no productId", ErrMalformedSnapshot, i)
		}
		if _, dup := seen[l.ProductID]; dup {
			return Cart{}, fmt.Errorf("%w: duplicate productId %q", ErrMalformedSnapshot, l.ProductID)
		}
		if l.Quantity < 1 {
			return Cart{}, fmt.Errorf("%w: line %q has quantity %d", ErrMalformedSnapshot, l.ProductID, l.Quantity)
		}
		if l.UnitPrice.IsNegative() {
			return Cart{}, fmt.Errorf("%w: line %q has negative price", ErrMalformedSnapshot, l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
	}

	if len(lines) == 0 {
		return Cart{}, nil
	}
	return Cart{Lines: lines}, nil
}
