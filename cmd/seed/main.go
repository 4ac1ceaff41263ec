package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"busly/internal/buses"
	"busly/internal/shared/config"
	"busly/internal/shared/database"
	"busly/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Busly Database Seeder...")

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
	// Delete in reverse dependency order
	tables := []string{
		"payment_orders",
		"reservation_seats",
		"reservations",
		"seat_inventory",
		"seats",
		"buses",
		"users",
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

	if _, err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedBuses(); err != nil {
		return fmt.Errorf("failed to seed buses: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedUsers creates 3 users: 1 admin and 2 regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		phone     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@busly.in", "9000000001", users.RoleAdmin},
		{"user1", "Asha", "Iyer", "asha.iyer@example.com", "9000000002", users.RoleUser},
		{"user2", "Ravi", "Patel", "ravi.patel@example.com", "9000000003", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Phone:     userData.phone,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedBuses creates demo routes with seats laid out 2x2 per row
func (s *Seeder) SeedBuses() error {
	fmt.Println("  🚌 Seeding buses...")

	busesData := []struct {
		number      string
		name        string
		origin      string
		destination string
		hour        int
		minute      int
		farePaise   int64
		gst         float64
		discount    float64
		rows        int
	}{
		{"MH-01-AB-1234", "Shivneri Express", "Mumbai", "Pune", 7, 30, 45000, 5, 0, 10},
		{"MH-02-CD-5678", "Deccan Queen Travels", "Pune", "Mumbai", 18, 0, 45000, 5, 10, 10},
		{"KA-05-EF-9012", "Airavat Night Rider", "Bengaluru", "Hyderabad", 22, 15, 95000, 5, 5, 12},
		{"DL-03-GH-3456", "Rajdhani Roadways", "Delhi", "Jaipur", 6, 0, 60000, 5, 0, 10},
	}

	for _, busData := range busesData {
		bus := buses.Bus{
			ID:              uuid.New(),
			Number:          busData.number,
			Name:            busData.name,
			Origin:          busData.origin,
			Destination:     busData.destination,
			DepartureHour:   busData.hour,
			DepartureMinute: busData.minute,
			FarePaise:       busData.farePaise,
			GSTPercent:      busData.gst,
			DiscountPercent: busData.discount,
		}

		for row := 1; row <= busData.rows; row++ {
			for _, letter := range []string{"A", "B", "C", "D"} {
				bus.Seats = append(bus.Seats, buses.Seat{
					ID:         uuid.New(),
					BusID:      bus.ID,
					SeatNumber: fmt.Sprintf("%s%d", letter, row),
				})
			}
		}

		if err := s.db.PostgreSQL.Create(&bus).Error; err != nil {
			return fmt.Errorf("failed to create bus %s: %w", busData.number, err)
		}

		fmt.Printf("    ✅ Created bus: %s %s -> %s (%d seats)\n",
			bus.Number, bus.Origin, bus.Destination, len(bus.Seats))
	}

	return nil
}
