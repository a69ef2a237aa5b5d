package service

import (
	"GoVault/internal/dto"
	"GoVault/internal/repo"
	"GoVault/model"
	"GoVault/utils"
	"errors"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenCreateAttempts bounds the collision-retry loop on share creation.
const tokenCreateAttempts = 5

// CreateShareLink issues a new share token for a file the caller owns.
// The token comes from a CSPRNG; uniqueness is enforced by the index on the
// token column and creation retries on a duplicate-key error.
func CreateShareLink(callerID, fileID uint64, expireHours *int, password string, downloadLimit *int) (*model.ShareLink, error) {
	if expireHours != nil && *expireHours <= 0 {
		return nil, ErrValidation
	}
	if downloadLimit != nil && *downloadLimit <= 0 {
		return nil, ErrValidation
	}

	var file model.File
	err := repo.Db.Where("id = ?", fileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := requireOwner(&file, callerID); err != nil {
		return nil, err
	}

	var passwordHash string
	if password != "" {
		passwordHash = utils.GetPwd(password)
	}
	var expireAt *time.Time
	if expireHours != nil {
		at := time.Now().Add(time.Duration(*expireHours) * time.Hour)
		expireAt = &at
	}

	var lastErr error
	for attempt := 0; attempt < tokenCreateAttempts; attempt++ {
		link := &model.ShareLink{
			Token:         utils.NewShareToken(),
			FileID:        file.ID,
			UserID:        callerID,
			PasswordHash:  passwordHash,
			ExpireAt:      expireAt,
			DownloadLimit: downloadLimit,
			IsActive:      true,
		}
		if err := repo.Db.Create(link).Error; err != nil {
			if repo.IsDuplicateKeyError(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		link.File = file
		cacheShareInfo(context.Background(), link, &file)
		return link, nil
	}
	return nil, lastErr
}

// RedeemShareLink validates a token and consumes one redemption. The guard
// chain runs in a fixed order, each failure distinct: unknown/inactive token,
// expiry, password, download limit. The row lock serializes the limit check
// with the increment, so a link with download_limit = 1 admits exactly one of
// any number of concurrent redeemers.
//
// The increment commits before the bound file is checked, so a redemption
// against a recycled file still consumes a use. Conservative exhaustion,
// inherited deliberately; see DESIGN.md.
func RedeemShareLink(token, password string) (*dto.RedeemResult, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var link model.ShareLink
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ? AND is_active = 1", token).
			First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if link.ExpireAt != nil && time.Now().After(*link.ExpireAt) {
			return ErrExpired
		}
		if link.PasswordHash != "" && !utils.CheckPwd(password, link.PasswordHash) {
			return ErrInvalidPassword
		}
		if link.DownloadLimit != nil && link.DownloadCount >= *link.DownloadLimit {
			return ErrLimitReached
		}
		return tx.Model(&model.ShareLink{}).
			Where("id = ?", link.ID).
			UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	var file model.File
	err = repo.Db.Where("id = ?", link.FileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileUnavailable
	}
	if err != nil {
		return nil, err
	}
	if file.IsDeleted {
		return nil, ErrFileUnavailable
	}

	return &dto.RedeemResult{
		Locator:      file.Locator,
		FileName:     file.Name,
		OriginalName: file.OriginalName,
		ContentType:  file.ContentType,
	}, nil
}

// DeactivateShareLink permanently disables a link the caller created.
func DeactivateShareLink(callerID, shareID uint64) error {
	return repo.Db.Transaction(func(tx *gorm.DB) error {
		var link model.ShareLink
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", shareID).
			First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if link.UserID != callerID {
			return ErrNotAuthorized
		}
		if err := tx.Model(&link).Update("is_active", false).Error; err != nil {
			return err
		}
		_ = utils.InvalidateShareInfoCache(context.Background(), link.Token)
		return nil
	})
}

// ListShareLinks lists the links the caller created for one of their files.
func ListShareLinks(callerID, fileID uint64) ([]model.ShareLink, error) {
	var file model.File
	err := repo.Db.Where("id = ?", fileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := requireOwner(&file, callerID); err != nil {
		return nil, err
	}
	var links []model.ShareLink
	err = repo.Db.Where("file_id = ?", fileID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

// GetShareInfo returns public metadata for a token without consuming a
// redemption: file name, whether a password is required, expiry. Served from
// cache when possible; never used on the redeem path, which must observe the
// locked row.
func GetShareInfo(token string) (*dto.ShareInfo, error) {
	ctx := context.Background()
	if info, ok := utils.GetShareInfoFromCache(ctx, token); ok {
		return info, nil
	}

	var link model.ShareLink
	err := repo.Db.Where("token = ? AND is_active = 1", token).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if link.ExpireAt != nil && time.Now().After(*link.ExpireAt) {
		return nil, ErrExpired
	}

	var file model.File
	if err := repo.Db.Where("id = ?", link.FileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileUnavailable
		}
		return nil, err
	}

	info := &dto.ShareInfo{
		FileName:     file.Name,
		Size:         file.Size,
		ContentType:  file.ContentType,
		NeedPassword: link.PasswordHash != "",
		ExpireAt:     link.ExpireAt,
	}
	_ = utils.SetShareInfoToCache(ctx, token, info)
	return info, nil
}

// cacheShareInfo primes the share-info cache right after creation.
func cacheShareInfo(ctx context.Context, link *model.ShareLink, file *model.File) {
	info := &dto.ShareInfo{
		FileName:     file.Name,
		Size:         file.Size,
		ContentType:  file.ContentType,
		NeedPassword: link.PasswordHash != "",
		ExpireAt:     link.ExpireAt,
	}
	_ = utils.SetShareInfoToCache(ctx, link.Token, info)
}
