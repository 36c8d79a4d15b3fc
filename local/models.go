package local

import "time"

// entry is one stored key, like a browser's local storage item.
type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (entry) TableName() string { return "local_storage" }
