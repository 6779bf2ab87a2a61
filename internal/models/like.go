package models

import "time"

// Like is a persisted liked-id entry (PostgreSQL). Kind is "post" or "reply".
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SoneID    string    `json:"sone_id" gorm:"size:64;index;uniqueIndex:idx_sone_like"`
	Kind      string    `json:"kind" gorm:"size:10;uniqueIndex:idx_sone_like"`
	ContentID string    `json:"content_id" gorm:"size:64;uniqueIndex:idx_sone_like"`
	CreatedAt time.Time `json:"created_at"`
}
