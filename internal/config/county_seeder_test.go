package config

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"helacredit/internal/adapters/persistence/models"
)

func TestSeedCountiesIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	seeder := NewSeeder(db)
	if err := seeder.seedCounties(); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := seeder.seedCounties(); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	if err := db.Model(&models.County{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 47 {
		t.Errorf("counties = %d, want 47", count)
	}

	var nairobi models.County
	if err := db.Where("code = ?", "047").First(&nairobi).Error; err != nil {
		t.Fatalf("county 047: %v", err)
	}
	if nairobi.Name != "Nairobi" {
		t.Errorf("county 047 = %s, want Nairobi", nairobi.Name)
	}
}
