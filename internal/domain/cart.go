package domain

// CartRecord is the raw server-side cart entry. Qty 0 is equivalent to absence.
type CartRecord struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// CartLine is a CartRecord joined with its catalog product. Product is nil when
// the record could not be resolved against the catalog; such a line has no price.
type CartLine struct {
	ProductID string   `json:"productId"`
	Qty       int      `json:"qty"`
	Product   *Product `json:"product,omitempty"`
}

// Resolved reports whether the line was joined with a catalog product.
func (l CartLine) Resolved() bool {
	return l.Product != nil
}

// Cost returns the unit price of the line. ok is false for an unresolved line.
func (l CartLine) Cost() (cost float64, ok bool) {
	if l.Product == nil {
		return 0, false
	}
	return l.Product.Cost, true
}

// Name returns the product name, or "" for an unresolved line.
func (l CartLine) Name() string {
	if l.Product == nil {
		return ""
	}
	return l.Product.Name
}

// Reconcile joins records with the catalog, one line per record in input order.
// The record's ProductID and Qty always win over anything on the product.
func Reconcile(records []CartRecord, catalog []Product) []CartLine {
	lines := make([]CartLine, len(records))
	for i, rec := range records {
		lines[i] = CartLine{ProductID: rec.ProductID, Qty: rec.Qty}
		if p := FindProduct(catalog, rec.ProductID); p != nil {
			product := *p
			lines[i].Product = &product
		}
	}
	return lines
}

// Records strips lines back to the records they were built from.
func Records(lines []CartLine) []CartRecord {
	records := make([]CartRecord, len(lines))
	for i, l := range lines {
		records[i] = CartRecord{ProductID: l.ProductID, Qty: l.Qty}
	}
	return records
}

// TotalValue sums qty * cost, resolving each cost against catalog by product id
// rather than trusting the line. A product missing from the catalog counts as 0.
func TotalValue(lines []CartLine, catalog []Product) float64 {
	var total float64
	for _, l := range lines {
		if p := FindProduct(catalog, l.ProductID); p != nil {
			total += float64(l.Qty) * p.Cost
		}
	}
	return total
}

// TotalItemCount sums the quantities of all lines.
func TotalItemCount(lines []CartLine) int {
	var count int
	for _, l := range lines {
		count += l.Qty
	}
	return count
}

// FindLine returns the index of the line for productID, or -1.
func FindLine(lines []CartLine, productID string) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// InCart reports whether productID has a line with a positive quantity.
func InCart(lines []CartLine, productID string) bool {
	i := FindLine(lines, productID)
	return i >= 0 && lines[i].Qty > 0
}

// OrderSummary is the read-only order details block shown at checkout.
type OrderSummary struct {
	Items    int     `json:"items"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
	// Unpriced lists product ids whose product is missing from the catalog.
	Unpriced []string `json:"unpriced,omitempty"`
}

// Summarize builds the order summary for lines. Shipping is always free.
func Summarize(lines []CartLine, catalog []Product) OrderSummary {
	subtotal := TotalValue(lines, catalog)
	s := OrderSummary{
		Items:    TotalItemCount(lines),
		Subtotal: subtotal,
		Total:    subtotal,
	}
	for _, l := range lines {
		if FindProduct(catalog, l.ProductID) == nil {
			s.Unpriced = append(s.Unpriced, l.ProductID)
		}
	}
	return s
}
