package model

import "time"

type Appointment struct {
	ID            string
	ServiceID     string
	EmployeeID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartTime     time.Time
	Minutes       int
	Status        string
	CancelledAt   *time.Time
	CancelReason  string
	CreatedAt     time.Time
}

// SearchWindow is the half-open date range availability is computed over.
// Bookings whose start lies in [From, To) are considered.
type SearchWindow struct {
	From time.Time
	To   time.Time
}
