package model

import "time"

// SortingRecord is a completed sorting kept in history.
type SortingRecord struct {
	CreatedAt    time.Time
	ID           string
	SourceName   string
	SourceSHA256 string
	Category     string
	Crop         Rect
	Hash         int32
}
