package dto

import "time"

// RedeemResult is what a successful redemption reveals: enough to fetch the
// blob, nothing about the owner.
type RedeemResult struct {
	Locator      string `json:"locator"`
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
}

// ShareInfo is the public, non-consuming view of a share link.
type ShareInfo struct {
	FileName     string     `json:"file_name"`
	Size         int64      `json:"size"`
	ContentType  string     `json:"content_type"`
	NeedPassword bool       `json:"need_password"`
	ExpireAt     *time.Time `json:"expire_at,omitempty"`
}

// CreateShareResponse returns the credential for a freshly issued link.
type CreateShareResponse struct {
	ShareID  uint64     `json:"share_id"`
	Token    string     `json:"token"`
	ExpireAt *time.Time `json:"expire_at,omitempty"`
}
