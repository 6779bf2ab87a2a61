package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SoneRecord is the persisted row of a Sone (PostgreSQL)
type SoneRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name"`
	Local       bool      `json:"local" gorm:"index"`
	Locked      bool      `json:"locked"`
	Known       bool      `json:"known" gorm:"default:false"` // remote Sone already shown to the user
	FirebaseUID string    `json:"firebase_uid,omitempty" gorm:"size:128;index"` // Link to Firebase User UID
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the table name used by gorm
func (SoneRecord) TableName() string { return "sones" }

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	SoneID string `json:"sone_id"`
	jwt.RegisteredClaims
}
