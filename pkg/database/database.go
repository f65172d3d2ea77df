package database

import (
	"fmt"
	"log"
	"time"

	"salepoint/internal/model"
	"salepoint/pkg/config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the PostgreSQL connection, configures the pool and runs
// migrations for every model.
func Initialize(cfg *config.Config) error {
	var err error

	// Disable implicit prepared statements to avoid "prepared statement
	// already exists" errors behind pgbouncer.
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true,
	}

	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.DB.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := Migrate(DB); err != nil {
		return err
	}

	if err := seedSuperAdmin(DB, &cfg.Bootstrap); err != nil {
		return err
	}

	fmt.Println("Database connected and migrated successfully")
	return nil
}

// Migrate creates or updates the table structure for all models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Business{},
		&model.License{},
		&model.Feature{},
		&model.BusinessFeature{},
		&model.User{},
		&model.SystemActivity{},
		&model.Notification{},
		&model.Category{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// seedSuperAdmin creates the initial super admin when none exists. The
// system must always retain at least one super admin account.
func seedSuperAdmin(db *gorm.DB, cfg *config.BootstrapConfig) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleSuperAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := cfg.AdminPassword
	generated := false
	if password == "" {
		var err error
		password, err = model.GenerateLicenseKey()
		if err != nil {
			return err
		}
		password = password[:12]
		generated = true
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
		IsActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	now := time.Now().Format(time.RFC3339)
	if generated {
		log.Printf("Created super admin %q at %s with generated password: %s", admin.Username, now, password)
	} else {
		log.Printf("Created super admin %q at %s", admin.Username, now)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
