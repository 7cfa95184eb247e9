package departures

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusDeparted  Status = "DEPARTED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the departure status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusDeparted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}
