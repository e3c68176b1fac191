package utils

// ServiceFeePerSeat is the flat admin fee charged on top of the trip
// price for every seat in a booking.
const ServiceFeePerSeat int64 = 5_000

// FareBreakdown is the server-computed monetary split for a booking.
// Client-supplied amounts are never trusted; the price always comes
// fresh from the trip row.
type FareBreakdown struct {
	Fare  int64 `json:"fare"`
	Fees  int64 `json:"fees"`
	Total int64 `json:"total"`
}

// ComputeFareBreakdown prices seatCount seats at pricePerSeat plus the
// fixed per-seat service fee.
func ComputeFareBreakdown(pricePerSeat int64, seatCount int) FareBreakdown {
	if seatCount < 0 {
		seatCount = 0
	}
	fare := pricePerSeat * int64(seatCount)
	fees := ServiceFeePerSeat * int64(seatCount)
	return FareBreakdown{
		Fare:  fare,
		Fees:  fees,
		Total: fare + fees,
	}
}
