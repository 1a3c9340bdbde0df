package config

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"helacredit/internal/adapters/persistence/models"
)

// kenyanCounties lists the 47 counties in official code order
var kenyanCounties = []string{
	"Mombasa", "Kwale", "Kilifi", "Tana River", "Lamu", "Taita-Taveta",
	"Garissa", "Wajir", "Mandera", "Marsabit", "Isiolo", "Meru",
	"Tharaka-Nithi", "Embu", "Kitui", "Machakos", "Makueni", "Nyandarua",
	"Nyeri", "Kirinyaga", "Murang'a", "Kiambu", "Turkana", "West Pokot",
	"Samburu", "Trans Nzoia", "Uasin Gishu", "Elgeyo-Marakwet", "Nandi",
	"Baringo", "Laikipia", "Nakuru", "Narok", "Kajiado", "Kericho",
	"Bomet", "Kakamega", "Vihiga", "Bungoma", "Busia", "Siaya", "Kisumu",
	"Homa Bay", "Migori", "Kisii", "Nyamira", "Nairobi",
}

// seedCounties seeds the county master table. Existing rows are left
// untouched so codes stay stable across deploys.
func (s *Seeder) seedCounties() error {
	created := 0
	for i, name := range kenyanCounties {
		code := fmt.Sprintf("%03d", i+1)

		var existing models.County
		err := s.db.Where("code = ?", code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		county := &models.County{Code: code, Name: name}
		if err := s.db.Create(county).Error; err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		log.Printf("✅ Seeded %d counties", created)
	}
	return nil
}
