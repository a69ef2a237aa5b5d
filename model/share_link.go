package model

import "time"

type ShareLink struct {
	ID uint64 `gorm:"primaryKey" json:"id,omitempty"`

	// Token is the credential embedded in the share URL. Uniqueness is
	// enforced by the index, not by generation probability; creation retries
	// on collision.
	Token string `gorm:"column:token;size:64;uniqueIndex;not null" json:"token"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"file_id"`
	File   File   `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID" json:"-"`

	// PasswordHash is a bcrypt digest; empty means the link is open.
	PasswordHash string `gorm:"column:password_hash;size:255" json:"-"`

	ExpireAt *time.Time `gorm:"column:expire_at" json:"expire_at,omitempty"`

	// DownloadLimit caps redemptions when set; DownloadCount never exceeds
	// it because the check and the increment run under a row lock.
	DownloadLimit *int `gorm:"column:download_limit" json:"download_limit,omitempty"`
	DownloadCount int  `gorm:"column:download_count;not null;default:0" json:"download_count"`

	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ShareLink) TableName() string {
	return "share_link"
}
