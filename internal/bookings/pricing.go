package bookings

// PriceBreakdown is the fare computation for a reservation. All amounts
// are in paise so the arithmetic stays exact end to end; Razorpay takes
// paise natively.
type PriceBreakdown struct {
	SubtotalPaise int64 `json:"subtotal_paise"`
	GSTPaise      int64 `json:"gst_paise"`
	DiscountPaise int64 `json:"discount_paise"`
	TotalPaise    int64 `json:"total_paise"`
}

const (
	DefaultGSTPercent      = 5.0
	DefaultDiscountPercent = 0.0
)

// Price computes the checkout amount for seatCount seats at farePaise
// each. GST and discount are percentages of the subtotal, rounded half
// up to the nearest paisa. The total never goes below zero no matter
// how large the discount.
func Price(farePaise int64, seatCount int, gstPercent, discountPercent float64) PriceBreakdown {
	if farePaise < 0 || seatCount <= 0 {
		return PriceBreakdown{}
	}
	if gstPercent < 0 {
		gstPercent = DefaultGSTPercent
	}
	if discountPercent < 0 {
		discountPercent = DefaultDiscountPercent
	}

	subtotal := farePaise * int64(seatCount)
	gst := percentOf(subtotal, gstPercent)
	discount := percentOf(subtotal, discountPercent)

	total := subtotal + gst - discount
	if total < 0 {
		total = 0
	}

	return PriceBreakdown{
		SubtotalPaise: subtotal,
		GSTPaise:      gst,
		DiscountPaise: discount,
		TotalPaise:    total,
	}
}

// percentOf returns pct% of amount in paise, rounded half up. Done in
// integer arithmetic over hundredths of a percent to avoid float drift.
func percentOf(amount int64, pct float64) int64 {
	basisPoints := int64(pct*100 + 0.5)
	return (amount*basisPoints + 5000) / 10000
}
