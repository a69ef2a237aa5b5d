package service

import (
	"GoVault/internal/repo"
	"GoVault/model"
	"GoVault/utils"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockFolder loads a folder row under FOR UPDATE.
func lockFolder(tx *gorm.DB, folderID uint64) (*model.Folder, error) {
	var folder model.Folder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", folderID).
		First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// checkParentFolder verifies that parentID exists and belongs to the caller.
func checkParentFolder(tx *gorm.DB, callerID uint64, parentID *uint64) error {
	if parentID == nil || *parentID == 0 {
		return nil
	}
	var parent model.Folder
	err := tx.Where("id = ?", *parentID).First(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if parent.UserID != callerID {
		return ErrNotAuthorized
	}
	return nil
}

// siblingNameTaken checks the (owner, parent, name) uniqueness rule.
func siblingNameTaken(tx *gorm.DB, callerID uint64, parentID *uint64, name string, excludeID uint64) (bool, error) {
	query := tx.Model(&model.Folder{}).
		Where("user_id = ? AND name = ? AND id != ?", callerID, name, excludeID)
	if parentID == nil || *parentID == 0 {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateFolder creates a folder under parentID (nil = root).
func CreateFolder(callerID uint64, parentID *uint64, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	if parentID != nil && *parentID == 0 {
		parentID = nil
	}
	var created *model.Folder
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		if err := checkParentFolder(tx, callerID, parentID); err != nil {
			return err
		}
		taken, err := siblingNameTaken(tx, callerID, parentID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrValidation
		}
		folder := &model.Folder{
			UserID:   callerID,
			ParentID: parentID,
			Name:     name,
		}
		if err := tx.Create(folder).Error; err != nil {
			// The unique index may still fire under a concurrent create.
			if repo.IsDuplicateKeyError(err) {
				return ErrValidation
			}
			return err
		}
		created = folder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenameFolder renames a folder, keeping sibling names unique.
func RenameFolder(callerID, folderID uint64, newName string) (*model.Folder, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrValidation
	}
	var renamed *model.Folder
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		folder, err := lockFolder(tx, folderID)
		if err != nil {
			return err
		}
		if folder.UserID != callerID {
			return ErrNotAuthorized
		}
		taken, err := siblingNameTaken(tx, callerID, folder.ParentID, newName, folder.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrValidation
		}
		if err := tx.Model(folder).Update("name", newName).Error; err != nil {
			if repo.IsDuplicateKeyError(err) {
				return ErrValidation
			}
			return err
		}
		renamed = folder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// isDescendantFolder walks the parent chain of candidate and reports whether
// ancestorID appears in it.
func isDescendantFolder(tx *gorm.DB, candidateID, ancestorID uint64) (bool, error) {
	current := &candidateID
	for current != nil {
		if *current == ancestorID {
			return true, nil
		}
		var folder model.Folder
		err := tx.Where("id = ?", *current).First(&folder).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		current = folder.ParentID
	}
	return false, nil
}

// MoveFolder reparents a folder. Moving a folder under itself or one of its
// descendants is rejected; the schema alone would not stop the cycle.
func MoveFolder(callerID, folderID uint64, newParentID *uint64) (*model.Folder, error) {
	if newParentID != nil && *newParentID == 0 {
		newParentID = nil
	}
	var moved *model.Folder
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		folder, err := lockFolder(tx, folderID)
		if err != nil {
			return err
		}
		if folder.UserID != callerID {
			return ErrNotAuthorized
		}
		if newParentID != nil {
			if err := checkParentFolder(tx, callerID, newParentID); err != nil {
				return err
			}
			cyclic, err := isDescendantFolder(tx, *newParentID, folder.ID)
			if err != nil {
				return err
			}
			if cyclic {
				return ErrValidation
			}
		}
		taken, err := siblingNameTaken(tx, callerID, newParentID, folder.Name, folder.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrValidation
		}
		if err := tx.Model(folder).Update("parent_id", newParentID).Error; err != nil {
			return err
		}
		folder.ParentID = newParentID
		moved = folder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// collectDescendantFolders gathers folderID plus every folder below it.
func collectDescendantFolders(tx *gorm.DB, folderID uint64) ([]uint64, error) {
	all := []uint64{folderID}
	frontier := []uint64{folderID}
	for len(frontier) > 0 {
		var children []model.Folder
		if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			all = append(all, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return all, nil
}

// DeleteFolder removes a folder and everything below it in one transaction:
// descendant folders, their files (ledger debited for the counted ones) and
// any share links bound to those files. Returns the locators of every purged
// file so the caller can queue blob cleanup.
func DeleteFolder(callerID, folderID uint64) ([]string, error) {
	var locators []string
	err := repo.Db.Transaction(func(tx *gorm.DB) error {
		folder, err := lockFolder(tx, folderID)
		if err != nil {
			return err
		}
		if folder.UserID != callerID {
			return ErrNotAuthorized
		}
		folderIDs, err := collectDescendantFolders(tx, folder.ID)
		if err != nil {
			return err
		}
		var files []model.File
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("folder_id IN ?", folderIDs).
			Find(&files).Error; err != nil {
			return err
		}
		var reclaimed int64
		fileIDs := make([]uint64, 0, len(files))
		for _, file := range files {
			fileIDs = append(fileIDs, file.ID)
			locators = append(locators, file.Locator)
			if file.Counted() {
				reclaimed += file.Size
			}
		}
		if len(fileIDs) > 0 {
			if err := tx.Delete(&model.ShareLink{}, "file_id IN ?", fileIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.File{}, "id IN ?", fileIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&model.Folder{}, "id IN ?", folderIDs).Error; err != nil {
			return err
		}
		return applyUsageDelta(tx, callerID, -reclaimed)
	})
	if err != nil {
		return nil, err
	}
	_ = utils.InvalidateAllFileListCache(context.Background(), callerID)
	return locators, nil
}
