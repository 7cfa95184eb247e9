package departures

import (
	"time"

	"github.com/google/uuid"
)

// Departure is one scheduled run of a vehicle on a route. Fares are stored in
// minor currency units so arithmetic stays exact.
type Departure struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	RouteCode   string    `json:"route_code" gorm:"not null;size:20;index"`
	Origin      string    `json:"origin" gorm:"not null;size:255"`
	Destination string    `json:"destination" gorm:"not null;size:255"`
	DepartsAt   time.Time `json:"departs_at" gorm:"not null;index"`
	Capacity    int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	FarePerSeat int64     `json:"fare_per_seat" gorm:"not null;check:fare_per_seat >= 0"`
	Status      Status    `json:"status" gorm:"type:varchar(20);default:'SCHEDULED'"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Departure) TableName() string {
	return "departures"
}

type DepartureResponse struct {
	ID          string    `json:"id"`
	RouteCode   string    `json:"route_code"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartsAt   time.Time `json:"departs_at"`
	Capacity    int       `json:"capacity"`
	FarePerSeat int64     `json:"fare_per_seat"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateDepartureRequest struct {
	RouteCode   string    `json:"route_code" binding:"required,min=2,max=20"`
	Origin      string    `json:"origin" binding:"required,min=2,max=255"`
	Destination string    `json:"destination" binding:"required,min=2,max=255"`
	DepartsAt   time.Time `json:"departs_at" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1,max=200"`
	FarePerSeat int64     `json:"fare_per_seat" binding:"required,min=0"`
}

type UpdateDepartureRequest struct {
	RouteCode   *string    `json:"route_code" binding:"omitempty,min=2,max=20"`
	Origin      *string    `json:"origin" binding:"omitempty,min=2,max=255"`
	Destination *string    `json:"destination" binding:"omitempty,min=2,max=255"`
	DepartsAt   *time.Time `json:"departs_at"`
	FarePerSeat *int64     `json:"fare_per_seat" binding:"omitempty,min=0"`
	Status      *string    `json:"status" binding:"omitempty,oneof=SCHEDULED DEPARTED CANCELLED"`
}

type DepartureListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	RouteCode string `form:"route_code"`
	Origin    string `form:"origin"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	Status    string `form:"status" binding:"omitempty,oneof=SCHEDULED DEPARTED CANCELLED"`
}

type PaginatedDepartures struct {
	Departures []DepartureResponse `json:"departures"`
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// Helper method to convert Departure to DepartureResponse
func (d *Departure) ToResponse() DepartureResponse {
	return DepartureResponse{
		ID:          d.ID.String(),
		RouteCode:   d.RouteCode,
		Origin:      d.Origin,
		Destination: d.Destination,
		DepartsAt:   d.DepartsAt,
		Capacity:    d.Capacity,
		FarePerSeat: d.FarePerSeat,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
