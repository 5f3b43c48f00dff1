package services

import "github.com/ledgerops/recon_app/internal/core/domain"

// DistributeCharge apportions a shared charge (shipping, handling) across item
// lines in proportion to each item's gross amount. Every share is first
// truncated, then the leftover minor units are handed out one at a time to the
// earliest items until the remainder is zero, so the shares always sum to the
// charge exactly. When all weights are zero the charge is spread evenly under
// the same remainder rule.
func DistributeCharge(total domain.Amount, weights []domain.Amount) []domain.Amount {
	shares := make([]domain.Amount, len(weights))
	if len(weights) == 0 || total == 0 {
		return shares
	}

	var weightSum domain.Amount
	for _, w := range weights {
		weightSum += w
	}

	var distributed domain.Amount
	for i, w := range weights {
		if weightSum == 0 {
			shares[i] = total / domain.Amount(len(weights))
		} else {
			shares[i] = total * w / weightSum
		}
		distributed += shares[i]
	}

	remainder := total - distributed
	for i := 0; remainder > 0; i = (i + 1) % len(shares) {
		shares[i]++
		remainder--
	}
	for i := 0; remainder < 0; i = (i + 1) % len(shares) {
		shares[i]--
		remainder++
	}
	return shares
}
