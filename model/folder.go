package model

import "time"

type Folder struct {
	ID uint64 `gorm:"primaryKey" json:"id,omitempty"`

	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_owner_parent_name,priority:1" json:"user_id,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	// ParentID is nil for root-level folders.
	ParentID *uint64 `gorm:"column:parent_id;index;uniqueIndex:uk_owner_parent_name,priority:2" json:"parent_id,omitempty"`
	Parent   *Folder `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Name string `gorm:"column:name;size:255;not null;uniqueIndex:uk_owner_parent_name,priority:3" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Folder) TableName() string {
	return "folder"
}
