package seats

import (
	"time"

	"github.com/google/uuid"
)

// Seat occupancy states. HELD and SOLD always carry a holder reservation id.
type Status string

const (
	StatusFree Status = "FREE"
	StatusHeld Status = "HELD"
	StatusSold Status = "SOLD"
)

// IsValid checks if the seat status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusFree, StatusHeld, StatusSold:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Seat belongs to exactly one departure. The holder reference points at the
// reservation currently holding or owning the seat.
type Seat struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DepartureID uuid.UUID  `gorm:"type:uuid;index;not null" json:"departure_id"`
	Label       string     `gorm:"type:varchar(10);not null" json:"label"`
	Status      Status     `gorm:"type:varchar(10);check:status IN ('FREE', 'HELD', 'SOLD');default:'FREE'" json:"status"`
	HolderID    *uuid.UUID `gorm:"type:uuid;index" json:"holder_id,omitempty"`
	ScanCount   int        `gorm:"not null;default:0" json:"scan_count"`
	LastScanAt  *time.Time `json:"last_scan_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// IsFree reports whether the seat has no active holder
func (s *Seat) IsFree() bool {
	return s.Status == StatusFree
}

// HeldBy reports whether the seat is held by the given reservation
func (s *Seat) HeldBy(reservationID uuid.UUID) bool {
	return s.Status == StatusHeld && s.HolderID != nil && *s.HolderID == reservationID
}

// SeatView is the read model returned by the seat-map endpoints
type SeatView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status string `json:"status"`
}
