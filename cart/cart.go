// Package cart computes order totals from selected pharmacy offers, a
// flat delivery fee per line, and an optional tele-consult fee.
package cart

// Line is one cart entry. Lines with qty <= 0 or unit price <= 0 are
// placeholders and contribute nothing to the total.
type Line struct {
	SKU         string `json:"sku"`
	UnitPrice   int    `json:"unit_price"`
	Qty         int    `json:"qty"`
	DeliveryFee int    `json:"delivery_fee"`
}

// Valid reports whether the line counts toward the total.
func (l Line) Valid() bool {
	return l.Qty > 0 && l.UnitPrice > 0
}

// Total returns the line total: unit_price * qty + delivery_fee.
func (l Line) Total() int {
	return l.UnitPrice*l.Qty + l.DeliveryFee
}

// Cart holds selected lines and an optional consult fee.
type Cart struct {
	Lines      []Line `json:"lines"`
	ConsultFee int    `json:"consult_fee"`
}

// SetQty updates one line's quantity. The grand total is never patched
// incrementally: it is always recomputed as a fold over current lines,
// so per-line updates cannot drift.
func (c *Cart) SetQty(index, qty int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines[index].Qty = qty
}

// ValidLines returns the lines that count toward the total.
func (c *Cart) ValidLines() []Line {
	valid := make([]Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.Valid() {
			valid = append(valid, line)
		}
	}
	return valid
}

// GrandTotal folds over the current valid lines and adds the consult
// fee.
func (c *Cart) GrandTotal() int {
	return Price(c.Lines, c.ConsultFee)
}

// Price sums valid line totals plus consultFee.
func Price(lines []Line, consultFee int) int {
	total := consultFee
	for _, line := range lines {
		if !line.Valid() {
			continue
		}
		total += line.Total()
	}
	return total
}
