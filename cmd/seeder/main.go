package main

import (
	"fmt"
	"log"

	"github.com/themestore/demoaccess/internal/config"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	seedAdminUsers(db)
	seedEnquiries(db)

	log.Println("🎉 Seeding completed!")
}

func seedAdminUsers(db *gorm.DB) {
	password := "changeme123"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	users := []model.AdminUser{
		{Username: "admin", Name: "Administrator", Role: model.AdminRoleAdmin, Active: true},
		{Username: "sales1", Name: "Sales One", Role: model.AdminRoleSales, Active: true},
		{Username: "sales2", Name: "Sales Two", Role: model.AdminRoleSales, Active: true},
	}

	repo := repository.NewAdminRepository(db)

	log.Println("🌱 Seeding dashboard users...")
	for _, u := range users {
		if _, err := repo.FindUserByUsername(u.Username); err == nil {
			continue
		}

		u.Password = string(hashed)
		if err := repo.CreateUser(&u); err != nil {
			log.Printf("❌ Failed to create user %s: %v", u.Username, err)
		} else {
			log.Printf("✅ Created user: %s | Pass: %s", u.Username, password)
		}
	}
}

func seedEnquiries(db *gorm.DB) {
	log.Println("🌱 Seeding sample enquiries...")
	for i := 1; i <= 5; i++ {
		email := fmt.Sprintf("prospect%d@example.com", i)

		var existing model.Enquiry
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			continue
		}

		enquiry := model.Enquiry{
			Email:       email,
			Mobile:      fmt.Sprintf("98765432%02d", i),
			CompanyName: fmt.Sprintf("Prospect Company %d", i),
			City:        "Mumbai",
		}
		if err := db.Create(&enquiry).Error; err != nil {
			log.Printf("❌ Failed to create enquiry %s: %v", email, err)
		} else {
			log.Printf("✅ Created enquiry: %s", email)
		}
	}
}
