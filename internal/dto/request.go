package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username      string `json:"username" binding:"required"`
	FirstPassword string `json:"first-password" binding:"required"`
	LastPassword  string `json:"second-password" binding:"required"`
	Email         string `json:"email" binding:"required"`
}

// NewFileRecord is one entry of a bulk insert. The locator must already be
// written to the object store by the upload flow; the registry only records
// it. The whole batch is rejected when any entry fails validation.
type NewFileRecord struct {
	Name         string  `json:"name" binding:"required"`
	OriginalName string  `json:"original_name" binding:"required"`
	Locator      string  `json:"locator" binding:"required"`
	ContentType  string  `json:"content_type"`
	Size         int64   `json:"size" binding:"gte=0"`
	FolderID     *uint64 `json:"folder_id"`
}

type BulkInsertRequest struct {
	Records []NewFileRecord `json:"records" binding:"required"`
}

type FileListRequest struct {
	FolderID       *uint64 `json:"folder_id"`
	Limit          int     `json:"limit"`
	Offset         int     `json:"offset"`
	IncludeDeleted bool    `json:"include_deleted"`
}

type FileRenameRequest struct {
	FileID          uint64 `json:"file_id" binding:"required"`
	NewName         string `json:"new_name" binding:"required"`
	NewOriginalName string `json:"new_original_name"`
}

type FileIDRequest struct {
	FileID uint64 `json:"file_id" binding:"required"`
}

type FileTransferRequest struct {
	FileID     uint64 `json:"file_id" binding:"required"`
	NewOwnerID uint64 `json:"new_owner_id" binding:"required"`
}

type CreateShareRequest struct {
	FileID        uint64 `json:"file_id" binding:"required"`
	ExpireHours   *int   `json:"expire_hours"`
	Password      string `json:"password"`
	DownloadLimit *int   `json:"download_limit"`
	NotifyEmail   string `json:"notify_email"`
}

type RedeemShareRequest struct {
	Password string `json:"password"`
}

type FolderCreateRequest struct {
	ParentID *uint64 `json:"parent_id"`
	Name     string  `json:"name" binding:"required"`
}

type FolderRenameRequest struct {
	FolderID uint64 `json:"folder_id" binding:"required"`
	NewName  string `json:"new_name" binding:"required"`
}

type FolderMoveRequest struct {
	FolderID    uint64  `json:"folder_id" binding:"required"`
	NewParentID *uint64 `json:"new_parent_id"`
}

type FolderIDRequest struct {
	FolderID uint64 `json:"folder_id" binding:"required"`
}
