package models

import "time"

// Follow is a persisted follow-set entry (PostgreSQL)
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SoneID     string    `json:"sone_id" gorm:"size:64;index;uniqueIndex:idx_sone_followed"`
	FollowedID string    `json:"followed_id" gorm:"size:64;uniqueIndex:idx_sone_followed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Block is a persisted blocked-id entry (PostgreSQL)
type Block struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SoneID    string    `json:"sone_id" gorm:"size:64;index;uniqueIndex:idx_sone_blocked"`
	BlockedID string    `json:"blocked_id" gorm:"size:64;uniqueIndex:idx_sone_blocked"`
	CreatedAt time.Time `json:"created_at"`
}
