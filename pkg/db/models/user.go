package models

import (
	"time"

	"github.com/coursebay/coursebay-backend/pkg/enums"
)

// User is the local projection of an identity-provider account. Orders and
// products reference it by id; authentication itself happens upstream.
type User struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'buyer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
