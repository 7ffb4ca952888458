//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/WaveSlider/pkg/models"
)

const DefaultDBFile = "waveslider.sqlite3"
const errCatalogNil = "catalog is nil"

// Catalog keeps every emitted relative-time record in SQLite.
type Catalog struct {
	DB   *gorm.DB
	path string
}

// RelativeTime is the catalog row for one OutputRecord.
type RelativeTime struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	Event1         string    `gorm:"index:idx_event_pair,priority:1" json:"event1"`
	Event2         string    `gorm:"index:idx_event_pair,priority:2" json:"event2"`
	Station        string    `gorm:"index:idx_station" json:"station"`
	Phase          string    `json:"phase"`
	ReferenceTime  time.Time `json:"reference_time"`
	ShiftedTime    time.Time `json:"shifted_time"`
	CCValue        float64   `json:"cc_value"`
	TimeDifference float64   `json:"time_difference"`
	CreatedAt      time.Time
}

func NewCatalog(dbPath string) (*Catalog, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite catalog: %w", err)
	}

	if err := db.AutoMigrate(&RelativeTime{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Catalog{DB: db, path: dbPath}, nil
}

func (c *Catalog) Path() string {
	return c.path
}

func (c *Catalog) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(r models.OutputRecord) RelativeTime {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return RelativeTime{
		ID:             id,
		Event1:         r.Event1,
		Event2:         r.Event2,
		Station:        r.Station,
		Phase:          r.Phase,
		ReferenceTime:  r.ReferenceTime.UTC(),
		ShiftedTime:    r.ShiftedTime.UTC(),
		CCValue:        r.CCValue,
		TimeDifference: r.TimeDifference,
	}
}

func (row RelativeTime) record() models.OutputRecord {
	return models.OutputRecord{
		ID:             row.ID,
		Event1:         row.Event1,
		Event2:         row.Event2,
		ReferenceTime:  row.ReferenceTime.UTC(),
		ShiftedTime:    row.ShiftedTime.UTC(),
		Station:        row.Station,
		Phase:          row.Phase,
		CCValue:        row.CCValue,
		TimeDifference: row.TimeDifference,
	}
}

// Save stores r and returns its catalog ID.
func (c *Catalog) Save(ctx context.Context, r models.OutputRecord) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errCatalogNil)
	}
	row := toRow(r)
	if err := c.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("saving relative time: %w", err)
	}
	return row.ID, nil
}

// Emit lets the catalog act as a result sink.
func (c *Catalog) Emit(ctx context.Context, r models.OutputRecord) error {
	_, err := c.Save(ctx, r)
	return err
}

// List returns records in insertion order. An empty station matches all.
func (c *Catalog) List(ctx context.Context, station string) ([]models.OutputRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errCatalogNil)
	}
	q := c.DB.WithContext(ctx).Order("created_at, id")
	if station != "" {
		q = q.Where("station = ?", station)
	}
	var rows []RelativeTime
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing relative times: %w", err)
	}
	out := make([]models.OutputRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

// ListPair returns every record for the ordered event pair.
func (c *Catalog) ListPair(ctx context.Context, event1, event2 string) ([]models.OutputRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errCatalogNil)
	}
	var rows []RelativeTime
	err := c.DB.WithContext(ctx).
		Where("event1 = ? AND event2 = ?", event1, event2).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing pair %s/%s: %w", event1, event2, err)
	}
	out := make([]models.OutputRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errCatalogNil)
	}
	res := c.DB.WithContext(ctx).Where("id = ?", id).Delete(&RelativeTime{})
	if res.Error != nil {
		return fmt.Errorf("deleting relative time %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("relative time %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
