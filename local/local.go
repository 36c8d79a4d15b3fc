// Package local is the guest storage: a durable key/value store in a sqlite
// file, holding one JSON value per collection under a fixed key prefix.
package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/budget"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Prefix is prepended to collection names to build keys.
const Prefix = "pft:"

// Backend stores guest collections.
type Backend struct {
	db *gorm.DB
}

var _ budget.LocalBackend = (*Backend)(nil)

// Open opens, or creates, the sqlite file at path.
func Open(path string) (*Backend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open guest storage %q: %w", path, err)
	}
	return New(db)
}

// New uses an already opened database.
func New(db *gorm.DB) (*Backend, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate guest storage: %w", err)
	}
	return &Backend{db: db}, nil
}

func key(c budget.Collection) string { return Prefix + string(c) }

// Read returns the stored value of c, or budget.ErrNoData.
func (b *Backend) Read(ctx context.Context, c budget.Collection) ([]byte, error) {
	var e entry
	err := b.db.WithContext(ctx).Where("key = ?", key(c)).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, budget.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key(c), err)
	}
	return []byte(e.Value), nil
}

// Write replaces the stored value of c.
func (b *Backend) Write(ctx context.Context, c budget.Collection, data []byte) error {
	e := entry{Key: key(c), Value: string(data)}
	if err := b.db.WithContext(ctx).Save(&e).Error; err != nil {
		return fmt.Errorf("failed to write %q: %w", key(c), err)
	}
	return nil
}

// Clear removes every key with the Prefix.
func (b *Backend) Clear(ctx context.Context) error {
	err := b.db.WithContext(ctx).Where("key LIKE ?", Prefix+"%").Delete(&entry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear guest storage: %w", err)
	}
	return nil
}

// Keys lists the stored keys with the Prefix.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.WithContext(ctx).Model(&entry{}).Where("key LIKE ?", Prefix+"%").Order("key").Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list guest storage: %w", err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	db, err := b.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
