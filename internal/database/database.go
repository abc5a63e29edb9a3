package database

import (
	"fmt"
	"log"

	"event-ticketing/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// migrationGroup is a set of tables migrated together, in order
type migrationGroup struct {
	name   string
	models []interface{}
}

var migrationGroups = []migrationGroup{
	{"ledger", []interface{}{
		&models.Event{},
		&models.TicketHolding{},
		&models.RegistrySetting{},
		&models.Notification{},
	}},
	{"token", []interface{}{
		&models.TokenConfig{},
		&models.TokenAccount{},
		&models.TokenAllowance{},
		&models.TokenTransfer{},
	}},
	{"account", []interface{}{
		&models.User{},
	}},
}

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations against the global connection
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}

	var failed int
	for _, group := range migrationGroups {
		for _, model := range group.models {
			if err := db.AutoMigrate(model); err != nil {
				log.Printf("Warning: %s migration issue for %T: %v", group.name, model, err)
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d tables failed to migrate", failed)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// TableStatus reports whether a service table exists
type TableStatus struct {
	Group  string
	Table  string
	Exists bool
}

// Status lists every service table and whether it exists, without changing anything
func Status(db *gorm.DB) ([]TableStatus, error) {
	if db == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var out []TableStatus
	for _, group := range migrationGroups {
		for _, model := range group.models {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(model); err != nil {
				return nil, fmt.Errorf("failed to parse %T: %w", model, err)
			}
			out = append(out, TableStatus{
				Group:  group.name,
				Table:  stmt.Schema.Table,
				Exists: db.Migrator().HasTable(model),
			})
		}
	}
	return out, nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
