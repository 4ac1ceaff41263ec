package bookings

// Status is the lifecycle state of a reservation. A reservation starts
// PENDING and moves exactly once to CONFIRMED or RELEASED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusReleased  Status = "RELEASED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusReleased:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the reservation has settled and can no
// longer change state
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusReleased
}

// OrderStatus tracks the payment order attached to a reservation
type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderCreated, OrderPaid, OrderFailed, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}
