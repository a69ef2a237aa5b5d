package model

import "time"

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id,omitempty"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	FolderID *uint64 `gorm:"column:folder_id;index" json:"folder_id,omitempty"`
	Folder   *Folder `gorm:"foreignKey:FolderID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Name         string `gorm:"column:name;size:255;not null" json:"name"`
	OriginalName string `gorm:"column:original_name;size:255;not null" json:"original_name"`

	// Locator is the object path inside the external store. The blob is
	// written by the upload flow before the record exists; this table only
	// records where it lives.
	Locator string `gorm:"column:locator;size:512;not null" json:"locator,omitempty"`

	ContentType string `gorm:"column:content_type;size:128;not null;default:''" json:"content_type"`

	Size int64 `gorm:"column:size;not null;default:0" json:"size"`

	// IsDeleted marks the record as recycled. DeletedAt is set exactly when
	// IsDeleted is true and cleared on restore.
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false" json:"is_deleted,omitempty"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "file"
}

// Counted reports whether the record contributes to its owner's ledger.
func (f *File) Counted() bool {
	return !f.IsDeleted
}
