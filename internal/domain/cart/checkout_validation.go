package cart

import (
	"fmt"

	"storefront/internal/domain/catalog"

	"github.com/google/uuid"
)

// ValidationReport is the pre-checkout gate's verdict. Messages are written to
// be user-facing and are surfaced verbatim by the API.
type ValidationReport struct {
	Valid          bool
	Errors         []string
	ValidItemCount int
}

// ValidateForCheckout compares cart lines against freshly-read products and
// reports every problem without mutating anything. Price drift is reported,
// never silently corrected in either direction.
func ValidateForCheckout(lines []Line, products map[uuid.UUID]*catalog.Product) ValidationReport {
	report := ValidationReport{Valid: true}

	if len(lines) == 0 {
		report.Valid = false
		report.Errors = append(report.Errors, "cart is empty")
		return report
	}

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("%s is no longer available", line.ProductName))
			continue
		}
		if !product.Active {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("%s has been discontinued", product.Name))
			continue
		}
		if product.PriceCents != line.PriceCents {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf(
				"price for %s changed from %s to %s, please refresh your cart",
				product.Name, formatCents(line.PriceCents), formatCents(product.PriceCents)))
			continue
		}
		report.ValidItemCount++
	}

	return report
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
