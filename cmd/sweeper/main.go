package main

import (
	"flag"
	"log"
	"time"

	"github.com/themestore/demoaccess/internal/config"
	"github.com/themestore/demoaccess/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sweeper expires demo links whose TTL has elapsed. Intended to run from
// cron; a single pass is idempotent, so overlapping runs are harmless.
func main() {
	interval := flag.Duration("interval", 0, "rerun every interval instead of a single pass")
	flag.Parse()

	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	sweep(db, cfg.Demo.LinkTTL)
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		sweep(db, cfg.Demo.LinkTTL)
	}
}

func sweep(db *gorm.DB, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	res := db.Model(&model.DemoLink{}).
		Where("status = ? AND created_at < ?", model.DemoLinkStatusActive, cutoff).
		Update("status", model.DemoLinkStatusExpired)
	if res.Error != nil {
		log.Printf("❌ Sweep failed: %v", res.Error)
		return
	}
	log.Printf("🧹 Sweep done: %d link(s) expired", res.RowsAffected)
}
