package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitExact(t *testing.T) {
	splitter := NewRevenueSplitter(decimal.RequireFromString("0.10"))

	fee, revenue := splitter.Split(decimal.RequireFromString("99.99"))
	if !fee.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("fee = %s, want 10.00", fee)
	}
	if !revenue.Equal(decimal.RequireFromString("89.99")) {
		t.Errorf("revenue = %s, want 89.99", revenue)
	}
}

func TestSplitRoundsHalfEven(t *testing.T) {
	splitter := NewRevenueSplitter(decimal.RequireFromString("0.10"))

	// 0.25 * 0.10 = 0.025: half-even rounds down to 0.02.
	fee, revenue := splitter.Split(decimal.RequireFromString("0.25"))
	if !fee.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("fee = %s, want 0.02", fee)
	}
	if !revenue.Equal(decimal.RequireFromString("0.23")) {
		t.Errorf("revenue = %s, want 0.23", revenue)
	}

	// 0.35 * 0.10 = 0.035: half-even rounds up to 0.04.
	fee, _ = splitter.Split(decimal.RequireFromString("0.35"))
	if !fee.Equal(decimal.RequireFromString("0.04")) {
		t.Errorf("fee = %s, want 0.04", fee)
	}
}

// fee + revenue must reconstruct the total exactly for any amount; the
// rounding remainder always lands in the maker's share.
func TestSplitSumInvariant(t *testing.T) {
	rates := []string{"0.05", "0.10", "0.125", "0.30"}
	totals := []string{"0.01", "0.99", "1.00", "9.95", "33.33", "99.99", "100.00", "12345.67", "0.03"}
	for _, rate := range rates {
		splitter := NewRevenueSplitter(decimal.RequireFromString(rate))
		for _, raw := range totals {
			total := decimal.RequireFromString(raw)
			fee, revenue := splitter.Split(total)
			if !fee.Add(revenue).Equal(total) {
				t.Errorf("rate %s total %s: fee %s + revenue %s != total", rate, raw, fee, revenue)
			}
			if fee.IsNegative() {
				t.Errorf("rate %s total %s: negative fee %s", rate, raw, fee)
			}
		}
	}
}
