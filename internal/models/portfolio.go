// Package models defines data structures for Folio
package models

import (
	"fmt"
	"sort"
	"time"
)

// Position represents a single recorded holding: what was bought, when, and
// at what price. Positions are immutable once recorded; corrections happen
// in the holdings workbook, not here.
type Position struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	PurchasePrice float64   `json:"purchase_price"`
	Quantity      int       `json:"quantity"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

// Validate rejects positions that would make percentage math undefined.
// Quantity must be positive; purchase price must be positive (a zero price
// would produce a zero total investment and an undefined P&L percentage).
func (p Position) Validate() error {
	if p.Quantity <= 0 {
		return &InvalidPositionError{Symbol: p.Symbol, Reason: fmt.Sprintf("quantity must be positive, got %d", p.Quantity)}
	}
	if p.PurchasePrice <= 0 {
		return &InvalidPositionError{Symbol: p.Symbol, Reason: fmt.Sprintf("purchase price must be positive, got %v", p.PurchasePrice)}
	}
	return nil
}

// TotalInvestment returns purchase price × quantity.
func (p Position) TotalInvestment() float64 {
	return p.PurchasePrice * float64(p.Quantity)
}

// InvalidPositionError indicates a position that fails validation.
type InvalidPositionError struct {
	Symbol string
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position %s: %s", e.Symbol, e.Reason)
}

// Quote is an explicit optional price. A feed that could not supply a price
// returns Available=false; a zero price never signals absence.
type Quote struct {
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// PricedPosition is a Position joined with its current quote and the derived
// valuation figures. CurrentValue is 0 when the price is unavailable, and
// PriceUnavailable distinguishes "no data" from "lost 100%".
type PricedPosition struct {
	Position

	Quote Quote `json:"quote"`

	TotalInvestment float64 `json:"total_investment"`
	CurrentValue    float64 `json:"current_value"`
	UnrealizedPL    float64 `json:"unrealized_pl"`
	PLPercentage    float64 `json:"pl_percentage"`

	// WeightPct is this position's share of total current value, computed
	// over priced positions only. ContributionPct is its share of total
	// unrealized P&L; ContributionUndefined is set (and the value zeroed)
	// when the portfolio P&L sums to exactly zero.
	WeightPct             float64 `json:"weight_pct"`
	ContributionPct       float64 `json:"contribution_pct"`
	ContributionUndefined bool    `json:"contribution_undefined,omitempty"`
	PriceUnavailable      bool    `json:"price_unavailable,omitempty"`
}

// PortfolioSnapshot is a point-in-time aggregate of the whole portfolio.
type PortfolioSnapshot struct {
	Date              time.Time `json:"date"`
	TotalInvestment   float64   `json:"total_investment"`
	TotalCurrentValue float64   `json:"total_current_value"`
	TotalPL           float64   `json:"total_pl"`
	TotalPLPercentage float64   `json:"total_pl_percentage"`
}

// SameDay reports whether two snapshots fall on the same calendar date.
func (s PortfolioSnapshot) SameDay(other PortfolioSnapshot) bool {
	y1, m1, d1 := s.Date.Date()
	y2, m2, d2 := other.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// PerformanceHistory is an ordered-by-date sequence of snapshots with
// strictly increasing dates. Synthetic marks a backfilled series generated
// from a seeded random walk rather than real market history; consumers must
// disclaim accuracy when it is set.
type PerformanceHistory struct {
	Snapshots []PortfolioSnapshot `json:"snapshots"`
	Synthetic bool                `json:"synthetic"`
}

// Len returns the number of snapshots.
func (h *PerformanceHistory) Len() int {
	return len(h.Snapshots)
}

// Last returns the most recent snapshot and true, or a zero snapshot and
// false for an empty history.
func (h *PerformanceHistory) Last() (PortfolioSnapshot, bool) {
	if len(h.Snapshots) == 0 {
		return PortfolioSnapshot{}, false
	}
	return h.Snapshots[len(h.Snapshots)-1], true
}

// Sort orders snapshots by date ascending.
func (h *PerformanceHistory) Sort() {
	sort.Slice(h.Snapshots, func(i, j int) bool {
		return h.Snapshots[i].Date.Before(h.Snapshots[j].Date)
	})
}

// MonthlyReturn aggregates one calendar month of history: the last snapshot
// of the month plus the month-over-month change of TotalPLPercentage.
// The first month's return is 0 by definition.
type MonthlyReturn struct {
	Year             int               `json:"year"`
	Month            time.Month        `json:"month"`
	Snapshot         PortfolioSnapshot `json:"snapshot"`
	MonthlyReturnPct float64           `json:"monthly_return_pct"`
}

// Label returns a short display label like "Jan 2025".
func (m MonthlyReturn) Label() string {
	return fmt.Sprintf("%s %d", m.Month.String()[:3], m.Year)
}

// AlertDirection indicates which side of the threshold was crossed.
type AlertDirection string

const (
	AlertProfit AlertDirection = "profit"
	AlertLoss   AlertDirection = "loss"
)

// Alert flags a position whose P&L percentage crossed the configured
// threshold. Alerts live for one reporting cycle and are never mutated.
type Alert struct {
	Symbol       string         `json:"symbol"`
	Direction    AlertDirection `json:"direction"`
	PLPercentage float64        `json:"pl_percentage"`
	ThresholdPct float64        `json:"threshold_pct"`
}
