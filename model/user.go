package model

import (
	"gorm.io/gorm"
	"time"
)

type User struct {
	ID uint64 `gorm:"primaryKey"`

	UserName string `gorm:"column:user_name;type:varchar(50);not null;unique"`

	Password string `gorm:"column:pass_word;type:varchar(255);not null" json:"-"`

	Email string `gorm:"column:email;type:varchar(255);not null;unique"`

	IsActive bool `gorm:"column:is_active;not null;default:false"`

	// Ledger columns. StorageUsed is maintained exclusively by the usage
	// accountant inside the same transaction as the file mutation that
	// changed it; it equals the sum of sizes of the user's non-recycled files.
	StorageLimit int64 `gorm:"column:storage_limit;not null;default:0"`
	StorageUsed  int64 `gorm:"column:storage_used;not null;default:0"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "user_db"
}
