package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ridepass/internal/coupons"
	"ridepass/internal/departures"
	"ridepass/internal/seats"
	"ridepass/internal/shared/config"
	"ridepass/internal/shared/database"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Ridepass Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	tables := []string{
		"payment_records",
		"reservation_seats",
		"reservations",
		"coupons",
		"seats",
		"departures",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	adminID := uuid.New()
	fmt.Printf("  👤 Using admin id %s for created_by references\n", adminID)

	if err := s.SeedDepartures(adminID); err != nil {
		return fmt.Errorf("failed to seed departures: %w", err)
	}

	if err := s.SeedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedDepartures creates sample departures with their seat rows
func (s *Seeder) SeedDepartures(adminID uuid.UUID) error {
	fmt.Println("  🚌 Seeding departures...")

	departuresData := []struct {
		routeCode   string
		origin      string
		destination string
		hoursAhead  int
		capacity    int
		farePerSeat int64 // minor units
	}{
		{"BLR-CHN-01", "Bengaluru", "Chennai", 24, 40, 85000},
		{"BLR-CHN-02", "Bengaluru", "Chennai", 48, 40, 92000},
		{"MUM-PUN-07", "Mumbai", "Pune", 12, 32, 45000},
		{"DEL-JAI-03", "Delhi", "Jaipur", 72, 48, 60000},
		{"HYD-BLR-11", "Hyderabad", "Bengaluru", 36, 40, 78000},
	}

	for _, data := range departuresData {
		departure := departures.Departure{
			ID:          uuid.New(),
			RouteCode:   data.routeCode,
			Origin:      data.origin,
			Destination: data.destination,
			DepartsAt:   time.Now().Add(time.Duration(data.hoursAhead) * time.Hour),
			Capacity:    data.capacity,
			FarePerSeat: data.farePerSeat,
			Status:      departures.StatusScheduled,
			CreatedBy:   adminID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&departure).Error; err != nil {
			return fmt.Errorf("failed to create departure %s: %w", data.routeCode, err)
		}

		if err := s.createSeatsForDeparture(departure.ID, data.capacity); err != nil {
			return fmt.Errorf("failed to create seats for %s: %w", data.routeCode, err)
		}

		fmt.Printf("    ✅ Created departure: %s %s -> %s (%d seats)\n",
			departure.RouteCode, departure.Origin, departure.Destination, departure.Capacity)
	}

	return nil
}

// createSeatsForDeparture creates the seat rows for one departure
func (s *Seeder) createSeatsForDeparture(departureID uuid.UUID, capacity int) error {
	const seatsPerRow = 4

	seatRows := make([]seats.Seat, 0, capacity)
	for i := 0; i < capacity; i++ {
		row := i/seatsPerRow + 1
		col := rune('A' + i%seatsPerRow)
		seatRows = append(seatRows, seats.Seat{
			ID:          uuid.New(),
			DepartureID: departureID,
			Label:       fmt.Sprintf("%d%c", row, col),
			Status:      seats.StatusFree,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		})
	}

	if err := s.db.PostgreSQL.Create(&seatRows).Error; err != nil {
		return fmt.Errorf("failed to create seats: %w", err)
	}

	return nil
}

// SeedCoupons creates sample coupons
func (s *Seeder) SeedCoupons() error {
	fmt.Println("  🎟️ Seeding coupons...")

	couponsData := []coupons.Coupon{
		{
			ID:                 uuid.New(),
			Code:               "SAVE10",
			Kind:               coupons.KindPercentage,
			DiscountPercentage: 10,
			MinBookingAmount:   50000,
			MaxDiscountAmount:  100000,
			ValidFrom:          time.Now().AddDate(0, 0, -1),
			ValidTo:            time.Now().AddDate(0, 1, 0),
			UsageLimit:         500,
			Active:             true,
		},
		{
			ID:               uuid.New(),
			Code:             "FLAT50",
			Kind:             coupons.KindFixed,
			Amount:           5000,
			MinBookingAmount: 40000,
			ValidFrom:        time.Now().AddDate(0, 0, -1),
			ValidTo:          time.Now().AddDate(0, 0, 14),
			UsageLimit:       200,
			Active:           true,
		},
		{
			ID:                 uuid.New(),
			Code:               "FESTIVE25",
			Kind:               coupons.KindPercentage,
			DiscountPercentage: 25,
			MinBookingAmount:   150000,
			MaxDiscountAmount:  50000,
			ValidFrom:          time.Now().AddDate(0, 0, 7),
			ValidTo:            time.Now().AddDate(0, 0, 21),
			UsageLimit:         100,
			Active:             true,
		},
		{
			ID:                 uuid.New(),
			Code:               "EXPIRED5",
			Kind:               coupons.KindPercentage,
			DiscountPercentage: 5,
			ValidFrom:          time.Now().AddDate(0, -2, 0),
			ValidTo:            time.Now().AddDate(0, -1, 0),
			Active:             true,
		},
	}

	for i := range couponsData {
		coupon := &couponsData[i]
		coupon.CreatedAt = time.Now()
		coupon.UpdatedAt = time.Now()

		if err := s.db.PostgreSQL.Create(coupon).Error; err != nil {
			return fmt.Errorf("failed to create coupon %s: %w", coupon.Code, err)
		}
		fmt.Printf("    ✅ Created coupon: %s (%s)\n", coupon.Code, coupon.Kind)
	}

	return nil
}
