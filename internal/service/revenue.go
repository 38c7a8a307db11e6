package service

import "github.com/shopspring/decimal"

// RevenueSplitter computes the platform fee and maker payout for a settled
// order amount. Pure arithmetic, no I/O.
type RevenueSplitter struct {
	rate decimal.Decimal
}

func NewRevenueSplitter(commissionRate decimal.Decimal) *RevenueSplitter {
	return &RevenueSplitter{rate: commissionRate}
}

// Split rounds the fee half-even to 2 minor units and gives the remainder to
// the maker, so fee + revenue always equals total exactly.
func (s *RevenueSplitter) Split(total decimal.Decimal) (platformFee, makerRevenue decimal.Decimal) {
	platformFee = total.Mul(s.rate).RoundBank(2)
	makerRevenue = total.Sub(platformFee)
	return platformFee, makerRevenue
}
