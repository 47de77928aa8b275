package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const snapshotRowID = 1

// snapshotRow stores the whole store as one versioned JSON document.
type snapshotRow struct {
	ID      uint      `gorm:"primaryKey"`
	Version int64     `gorm:"not null"`
	Payload string    `gorm:"type:longtext;not null"`
	SavedAt time.Time `gorm:"not null"`
}

func (snapshotRow) TableName() string { return "store_snapshots" }

// SQLGateway persists snapshots to MySQL or SQLite through gorm. Each save replaces the
// single row inside a database transaction, so readers never see a partial payload.
type SQLGateway struct {
	DB *gorm.DB
}

// Connect opens the database (retrying while it comes up) and migrates the snapshot table.
func Connect(driver, dsn string) (*SQLGateway, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is required for the %s store driver", driver)
	}

	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s after 5 attempts: %w", driver, err)
	}

	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot table: %w", err)
	}
	applog.Info(nil, "database.connect", map[string]any{"driver": driver})
	return &SQLGateway{DB: db}, nil
}

func (g *SQLGateway) Load() (models.Snapshot, error) {
	var row snapshotRow
	err := g.DB.First(&row, snapshotRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		applog.Info(nil, "database.seed", map[string]any{"reason": "no snapshot row"})
		return Seed(), nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: read snapshot: %v", models.ErrPersistence, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(row.Payload), &snap); err != nil {
		applog.Error(nil, "database.load", err, map[string]any{"version": row.Version, "fallback": "seed"})
		return Seed(), nil
	}
	return normalize(snap), nil
}

func (g *SQLGateway) Save(snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", models.ErrPersistence, err)
	}

	err = g.DB.Transaction(func(tx *gorm.DB) error {
		var row snapshotRow
		err := tx.First(&row, snapshotRowID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = snapshotRow{ID: snapshotRowID, Version: 1, Payload: string(payload), SavedAt: time.Now()}
			return tx.Create(&row).Error
		case err != nil:
			return err
		}
		row.Version++
		row.Payload = string(payload)
		row.SavedAt = time.Now()
		return tx.Save(&row).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

// Version reports how many snapshots have been written.
func (g *SQLGateway) Version() (int64, error) {
	var row snapshotRow
	err := g.DB.Select("version").First(&row, snapshotRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return row.Version, err
}

func (g *SQLGateway) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
