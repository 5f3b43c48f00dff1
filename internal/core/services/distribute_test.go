package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerops/recon_app/internal/core/domain"
	"github.com/ledgerops/recon_app/internal/core/services"
)

func TestDistributeCharge(t *testing.T) {
	tests := []struct {
		name    string
		total   domain.Amount
		weights []domain.Amount
		want    []domain.Amount
	}{
		{
			name:    "even split with remainder to earliest",
			total:   100,
			weights: []domain.Amount{10, 10, 10},
			want:    []domain.Amount{34, 33, 33},
		},
		{
			name:    "proportional with remainder",
			total:   501,
			weights: []domain.Amount{1000, 2000},
			want:    []domain.Amount{167, 334},
		},
		{
			name:    "exact split",
			total:   300,
			weights: []domain.Amount{50, 50, 50},
			want:    []domain.Amount{100, 100, 100},
		},
		{
			name:    "single item takes all",
			total:   499,
			weights: []domain.Amount{1234},
			want:    []domain.Amount{499},
		},
		{
			name:    "zero total",
			total:   0,
			weights: []domain.Amount{10, 20},
			want:    []domain.Amount{0, 0},
		},
		{
			name:    "all-zero weights fall back to even split",
			total:   100,
			weights: []domain.Amount{0, 0, 0},
			want:    []domain.Amount{34, 33, 33},
		},
		{
			name:    "negative total",
			total:   -100,
			weights: []domain.Amount{10, 10, 10},
			want:    []domain.Amount{-34, -33, -33},
		},
		{
			name:    "no weights",
			total:   100,
			weights: nil,
			want:    []domain.Amount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.DistributeCharge(tt.total, tt.weights)
			assert.Equal(t, tt.want, got)

			var sum domain.Amount
			for _, s := range got {
				sum += s
			}
			if len(tt.weights) > 0 {
				assert.Equal(t, tt.total, sum, "shares must sum to the total exactly")
			}
		})
	}
}
