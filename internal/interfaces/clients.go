package interfaces

import "context"

// PriceFeed supplies current market prices. Absent keys in the returned map
// mean "price unavailable"; a zero price is never used to signal absence.
// A timed-out fetch is treated identically to an unavailable price.
type PriceFeed interface {
	// GetQuotes fetches current prices for the given symbols. Symbols that
	// could not be quoted are simply absent from the result; the error is
	// reserved for total feed failure (which callers treat as degraded,
	// not fatal).
	GetQuotes(ctx context.Context, symbols []string) (map[string]float64, error)
}

// EmailSender delivers a rendered HTML report, optionally embedding a chart
// image. Delivery failure is non-fatal to the reporting cycle.
type EmailSender interface {
	SendReport(ctx context.Context, subject, html string, chartPNG []byte) error
}
