package service

import (
	"GoVault/internal/dto"
	"GoVault/internal/repo"
	"GoVault/model"
	"GoVault/utils"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cacheFolderID normalizes folder ID for cache keys.
func cacheFolderID(folderID *uint64) uint64 {
	if folderID == nil {
		return 0
	}
	return *folderID
}

// invalidateFileListCache clears cached listings for one folder of a user.
func invalidateFileListCache(userID uint64, folderID *uint64) {
	_ = utils.InvalidateFileListCache(context.Background(), userID, cacheFolderID(folderID))
}

// lockFile loads a file row under FOR UPDATE so the mutation and its ledger
// adjustment never act on a stale read. Recycled rows are included; callers
// decide what states they accept.
func lockFile(tx *gorm.DB, fileID uint64) (*model.File, error) {
	var file model.File
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", fileID).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// requireOwner is the ownership guard applied to every mutating operation.
// Existence is checked first (lockFile), so non-owners do learn that the id
// exists; see DESIGN.md for the trade-off.
func requireOwner(file *model.File, callerID uint64) error {
	if file.UserID != callerID {
		return ErrNotAuthorized
	}
	return nil
}

// GetFileById returns a non-recycled file by ID.
func GetFileById(fileID uint64) (*model.File, error) {
	var file model.File
	err := repo.Db.Where("id = ? AND is_deleted = 0", fileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &file, err
}

// RenameFile updates a file's display name and, when given, original name.
func RenameFile(callerID, fileID uint64, newName, newOriginalName string) (*model.File, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrValidation
	}
	var renamed *model.File
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if err := requireOwner(file, callerID); err != nil {
			return err
		}
		updates := map[string]interface{}{"name": newName}
		if strings.TrimSpace(newOriginalName) != "" {
			updates["original_name"] = strings.TrimSpace(newOriginalName)
		}
		if err := tx.Model(file).Updates(updates).Error; err != nil {
			return err
		}
		renamed = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateFileListCache(callerID, renamed.FolderID)
	return renamed, nil
}

// SoftDeleteFile moves a file to the recycle bin and debits the ledger.
// Returns the locator so the caller can decide whether to drop the blob.
func SoftDeleteFile(callerID, fileID uint64) (*model.File, error) {
	var deleted *model.File
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if err := requireOwner(file, callerID); err != nil {
			return err
		}
		if file.IsDeleted {
			deleted = file
			return nil
		}
		old := *file
		now := time.Now()
		if err := tx.Model(file).Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": &now,
		}).Error; err != nil {
			return err
		}
		file.IsDeleted = true
		file.DeletedAt = &now
		if err := accountUpdate(tx, &old, file); err != nil {
			return err
		}
		deleted = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateFileListCache(callerID, deleted.FolderID)
	return deleted, nil
}

// RestoreFile brings a recycled file back and credits the ledger. Restoring
// a file that is not recycled is a no-op on the ledger.
func RestoreFile(callerID, fileID uint64) (*model.File, error) {
	var restored *model.File
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if err := requireOwner(file, callerID); err != nil {
			return err
		}
		if !file.IsDeleted {
			restored = file
			return nil
		}
		old := *file
		if err := tx.Model(file).Updates(map[string]interface{}{
			"is_deleted": false,
			"deleted_at": nil,
		}).Error; err != nil {
			return err
		}
		file.IsDeleted = false
		file.DeletedAt = nil
		if err := accountUpdate(tx, &old, file); err != nil {
			return err
		}
		restored = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateFileListCache(callerID, restored.FolderID)
	return restored, nil
}

// PermanentlyDeleteFile removes the registry row and debits the ledger when
// the row was still counted. Returns the locator for out-of-band blob
// removal; this is the only path that must coordinate with the object store.
func PermanentlyDeleteFile(callerID, fileID uint64) (*model.File, error) {
	var purged *model.File
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if err := requireOwner(file, callerID); err != nil {
			return err
		}
		if err := tx.Delete(&model.ShareLink{}, "file_id = ?", file.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.File{}, file.ID).Error; err != nil {
			return err
		}
		if err := accountPurge(tx, file); err != nil {
			return err
		}
		purged = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateFileListCache(callerID, purged.FolderID)
	return purged, nil
}

// TransferFileOwner hands a file to another account, moving its bytes from
// one ledger to the other in the same transaction. The record lands at the
// new owner's root since folder ids do not carry across accounts.
func TransferFileOwner(callerID, fileID, newOwnerID uint64) (*model.File, error) {
	if newOwnerID == callerID {
		return nil, ErrValidation
	}
	var transferred *model.File
	var oldFolder *uint64
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if err := requireOwner(file, callerID); err != nil {
			return err
		}
		var receiver model.User
		if err := tx.Where("id = ?", newOwnerID).First(&receiver).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		old := *file
		oldFolder = file.FolderID
		if err := tx.Model(file).Updates(map[string]interface{}{
			"user_id":   newOwnerID,
			"folder_id": nil,
		}).Error; err != nil {
			return err
		}
		file.UserID = newOwnerID
		file.FolderID = nil
		if err := accountUpdate(tx, &old, file); err != nil {
			return err
		}
		transferred = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidateFileListCache(callerID, oldFolder)
	invalidateFileListCache(newOwnerID, nil)
	return transferred, nil
}

// validateNewFiles checks a batch wholesale; one bad record rejects all.
func validateNewFiles(records []dto.NewFileRecord) error {
	if len(records) == 0 {
		return ErrValidation
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" ||
			strings.TrimSpace(rec.OriginalName) == "" ||
			strings.TrimSpace(rec.Locator) == "" ||
			rec.Size < 0 {
			return ErrValidation
		}
	}
	return nil
}

// BulkInsertFiles inserts a batch of records for the caller in one unit of
// work: validation, quota check, inserts and the ledger credit all commit or
// roll back together. The caller's user row is locked to serialize the quota
// check against concurrent batches.
func BulkInsertFiles(callerID uint64, records []dto.NewFileRecord) ([]model.File, error) {
	if err := validateNewFiles(records); err != nil {
		return nil, err
	}

	files := make([]model.File, 0, len(records))
	var total int64
	folderIDs := make(map[uint64]struct{})
	for _, rec := range records {
		file := model.File{
			UserID:       callerID,
			FolderID:     rec.FolderID,
			Name:         strings.TrimSpace(rec.Name),
			OriginalName: strings.TrimSpace(rec.OriginalName),
			Locator:      strings.TrimSpace(rec.Locator),
			ContentType:  rec.ContentType,
			Size:         rec.Size,
		}
		files = append(files, file)
		total += rec.Size
		if rec.FolderID != nil {
			folderIDs[*rec.FolderID] = struct{}{}
		}
	}

	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		var owner model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", callerID).
			First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if len(folderIDs) > 0 {
			ids := make([]uint64, 0, len(folderIDs))
			for id := range folderIDs {
				ids = append(ids, id)
			}
			var count int64
			if err := tx.Model(&model.Folder{}).
				Where("id IN ? AND user_id = ?", ids, callerID).
				Count(&count).Error; err != nil {
				return err
			}
			if count != int64(len(ids)) {
				return ErrValidation
			}
		}
		if owner.StorageLimit > 0 && owner.StorageUsed+total > owner.StorageLimit {
			return ErrQuotaExceeded
		}
		if err := tx.Create(&files).Error; err != nil {
			return err
		}
		return applyUsageDelta(tx, callerID, total)
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{})
	for _, file := range files {
		key := cacheFolderID(file.FolderID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fid := file.FolderID
		invalidateFileListCache(callerID, fid)
	}
	return files, nil
}

// ListFiles returns the caller's files newest-first with limit/offset
// pagination, optionally scoped to one folder and optionally including
// recycled records.
func ListFiles(callerID uint64, req *dto.FileListRequest) ([]model.File, int64, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	if cached, ok := utils.GetFileListFromCache(
		context.Background(),
		callerID,
		cacheFolderID(req.FolderID),
		req.IncludeDeleted,
		limit,
		offset,
	); ok {
		return cached.Files, cached.Total, nil
	}

	query := repo.Db.Model(&model.File{}).Where("user_id = ?", callerID)
	if !req.IncludeDeleted {
		query = query.Where("is_deleted = 0")
	}
	if req.FolderID == nil || *req.FolderID == 0 {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *req.FolderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var files []model.File
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&files).Error; err != nil {
		return nil, 0, err
	}

	_ = utils.SetFileListToCache(
		context.Background(),
		callerID,
		cacheFolderID(req.FolderID),
		req.IncludeDeleted,
		limit,
		offset,
		&utils.FileListCache{Files: files, Total: total},
	)

	return files, total, nil
}

// ListRecycledFiles lists the caller's recycle bin, newest deletions first.
func ListRecycledFiles(callerID uint64) ([]model.File, error) {
	var files []model.File
	err := repo.Db.
		Where("user_id = ? AND is_deleted = 1", callerID).
		Order("deleted_at DESC").
		Find(&files).Error
	return files, err
}
