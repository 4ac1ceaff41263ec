package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name            string
		farePaise       int64
		seatCount       int
		gstPercent      float64
		discountPercent float64
		want            PriceBreakdown
	}{
		{
			name:            "two seats with gst and discount",
			farePaise:       50000,
			seatCount:       2,
			gstPercent:      5,
			discountPercent: 10,
			want: PriceBreakdown{
				SubtotalPaise: 100000,
				GSTPaise:      5000,
				DiscountPaise: 10000,
				TotalPaise:    95000,
			},
		},
		{
			name:            "discount larger than subtotal clamps to zero",
			farePaise:       10000,
			seatCount:       1,
			gstPercent:      5,
			discountPercent: 200,
			want: PriceBreakdown{
				SubtotalPaise: 10000,
				GSTPaise:      500,
				DiscountPaise: 20000,
				TotalPaise:    0,
			},
		},
		{
			name:       "no discount",
			farePaise:  45000,
			seatCount:  3,
			gstPercent: 5,
			want: PriceBreakdown{
				SubtotalPaise: 135000,
				GSTPaise:      6750,
				DiscountPaise: 0,
				TotalPaise:    141750,
			},
		},
		{
			name:            "fractional percentages round half up",
			farePaise:       33333,
			seatCount:       1,
			gstPercent:      5,
			discountPercent: 2.5,
			want: PriceBreakdown{
				SubtotalPaise: 33333,
				GSTPaise:      1667, // 1666.65 rounds up
				DiscountPaise: 833,  // 833.325 rounds down
				TotalPaise:    34167,
			},
		},
		{
			name:      "zero seats yields empty breakdown",
			farePaise: 50000,
			seatCount: 0,
			want:      PriceBreakdown{},
		},
		{
			name:            "negative percentages fall back to defaults",
			farePaise:       10000,
			seatCount:       1,
			gstPercent:      -1,
			discountPercent: -1,
			want: PriceBreakdown{
				SubtotalPaise: 10000,
				GSTPaise:      500,
				DiscountPaise: 0,
				TotalPaise:    10500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.farePaise, tt.seatCount, tt.gstPercent, tt.discountPercent)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceTotalNeverNegative(t *testing.T) {
	for discount := 0.0; discount <= 500; discount += 25 {
		got := Price(10000, 2, 5, discount)
		assert.GreaterOrEqual(t, got.TotalPaise, int64(0), "discount %.0f%%", discount)
	}
}
