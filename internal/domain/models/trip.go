package models

// Trip status values driven by operations, not by the booking core.
const (
	TripScheduled = "scheduled"
	TripCancelled = "cancelled"
	TripCompleted = "completed"
)

// Trip carries the schedule fields the booking core reads, plus the
// denormalized available_seats counter. The counter is display-level
// cache only; availability questions go through the resolver.
type Trip struct {
	ID             int64  `json:"id"`
	RouteFrom      string `json:"route_from"`
	RouteTo        string `json:"route_to"`
	TripDate       string `json:"trip_date"`
	TripTime       string `json:"trip_time"`
	VehicleCode    string `json:"vehicle_code"`
	TotalSeats     int    `json:"total_seats"`
	PricePerSeat   int64  `json:"price_per_seat"`
	AvailableSeats int    `json:"available_seats"`
	Status         string `json:"status"`
}

// TripInput is the admin-facing creation payload.
type TripInput struct {
	RouteFrom    string `json:"route_from"`
	RouteTo      string `json:"route_to"`
	TripDate     string `json:"trip_date"`
	TripTime     string `json:"trip_time"`
	VehicleCode  string `json:"vehicle_code"`
	TotalSeats   int    `json:"total_seats"`
	PricePerSeat int64  `json:"price_per_seat"`
}
