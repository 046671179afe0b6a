// CafeTrack - coffee equipment repair tracking service
package main

import (
	"context"
	"log"
	"os"

	"cafetrack/internal/config"
	"cafetrack/internal/domain/notifications"
	"cafetrack/internal/repository"
	"cafetrack/internal/repository/sqlite"
	"cafetrack/internal/server"
	"cafetrack/internal/watch"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	log.Printf("☕ Starting %s...", cfg.Business.Name)
	log.Printf("📋 Debug mode: %v", cfg.Debug)

	// Initialize database
	db, err := sqlite.New(cfg.GetDatabasePath())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ Database initialized")

	// Create admin user if none exists
	if err := createDefaultAdmin(db); err != nil {
		log.Printf("⚠️ Could not create default admin: %v", err)
	}

	// Initialize repositories
	repos := &repository.Repositories{
		Reports:  sqlite.NewReportRepo(db),
		Users:    sqlite.NewUserRepo(db),
		Settings: sqlite.NewSettingsRepo(db),
	}

	// Report change fan-out for live watchers
	hub := watch.NewHub()

	notifier := buildNotifier(cfg, repos)

	// Create and run the server
	srv := server.New(cfg, repos, hub, notifier)

	log.Printf("🌐 Server listening on http://%s", cfg.Address())

	if err := srv.Run(); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}

func buildNotifier(cfg *config.Config, repos *repository.Repositories) *notifications.Notifier {
	if !cfg.Features.EmailNotifications && !cfg.Features.SMSNotifications {
		return nil
	}

	var email notifications.EmailProvider
	var sms notifications.SMSProvider
	if cfg.Features.EmailNotifications {
		email = notifications.LogEmailProvider{}
	}
	if cfg.Features.SMSNotifications {
		sms = notifications.LogSMSProvider{}
	}

	// The admin settings endpoint can override the configured recipient.
	adminEmail, err := repos.Settings.Get(context.Background(), repository.SettingAdminEmail)
	if err != nil || adminEmail == "" {
		adminEmail = cfg.Business.ContactEmail
	}

	return notifications.NewNotifier(email, sms, adminEmail)
}

// createDefaultAdmin creates a default admin user if no users exist
func createDefaultAdmin(db *sqlite.DB) error {
	// Check if any users exist
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Users already exist
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hashedPassword, err := sqlite.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO users (username, password_hash, name, phone, role)
		VALUES (?, ?, ?, ?, ?)
	`, "admin", hashedPassword, "Administrador", "", "admin")

	if err != nil {
		return err
	}

	log.Println("✅ Default admin user created:")
	log.Println("   Username: admin")
	if os.Getenv("ADMIN_PASSWORD") == "" {
		log.Println("   Password: admin123")
		log.Println("   ⚠️ CHANGE THIS PASSWORD IN PRODUCTION!")
	}

	// Create sample technicians for testing
	if os.Getenv("SEED_DATA") == "true" {
		createSampleData(db, hashedPassword)
	}

	return nil
}

// createSampleData creates sample technicians for testing
func createSampleData(db *sqlite.DB, passwordHash string) {
	log.Println("🌱 Creating sample data...")

	sampleTechnicians := []struct {
		username string
		name     string
	}{
		{"carlos", "Carlos"},
		{"jonathan", "Jonathan"},
		{"gabriel", "Gabriel"},
	}
	for _, t := range sampleTechnicians {
		db.Exec(`
			INSERT INTO users (username, password_hash, name, phone, role)
			VALUES (?, ?, ?, ?, ?)
		`, t.username, passwordHash, t.name, "", "technician")
	}

	log.Println("✅ Sample data created")
}
