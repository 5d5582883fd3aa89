package cart

type Totals struct {
	SubtotalCents int64
	ItemCount     int32
}

// CalculateTotals is a pure function over cart lines: subtotal is the sum of
// price times quantity, item count is the sum of quantities.
func CalculateTotals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.SubtotalCents += l.TotalCents()
		t.ItemCount += l.Quantity
	}
	return t
}
