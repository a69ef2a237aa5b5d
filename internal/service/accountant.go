package service

import (
	"GoVault/internal/repo"
	"GoVault/model"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// The usage accountant keeps user_db.storage_used equal to the sum of sizes
// of the owner's non-recycled files. Every registry mutation calls exactly
// one of the account* helpers on the same *gorm.DB transaction that performs
// the mutation, so the pair commits or rolls back as one unit. The ledger is
// only ever moved by signed deltas; it is never recomputed and overwritten
// on the write path.

// applyUsageDelta shifts the owner's ledger by delta bytes, floored at zero.
// The floor is a defensive clamp; persistent drift means a mutation path
// bypassed the accountant and should be caught by ReconcileUsage.
func applyUsageDelta(tx *gorm.DB, ownerID uint64, delta int64) error {
	if delta == 0 {
		return nil
	}
	return tx.Model(&model.User{}).
		Where("id = ?", ownerID).
		UpdateColumn("storage_used", gorm.Expr("GREATEST(storage_used + ?, 0)", delta)).Error
}

// accountInsert credits a freshly inserted record to its owner.
func accountInsert(tx *gorm.DB, file *model.File) error {
	if !file.Counted() {
		return nil
	}
	return applyUsageDelta(tx, file.UserID, file.Size)
}

// accountPurge debits a permanently removed record from its owner.
func accountPurge(tx *gorm.DB, file *model.File) error {
	if !file.Counted() {
		return nil
	}
	return applyUsageDelta(tx, file.UserID, -file.Size)
}

// accountUpdate reconciles the ledger across a record update. old must be the
// row as read under lock before the mutation, updated the row after.
func accountUpdate(tx *gorm.DB, old, updated *model.File) error {
	switch {
	case old.UserID != updated.UserID:
		// Ownership transfer: debit the old owner, credit the new one,
		// each only for the states that were actually counted.
		if old.Counted() {
			if err := applyUsageDelta(tx, old.UserID, -old.Size); err != nil {
				return err
			}
		}
		if updated.Counted() {
			return applyUsageDelta(tx, updated.UserID, updated.Size)
		}
		return nil
	case old.Counted() && updated.Counted():
		// Delta adjustment, not a recompute, so concurrent mutations on
		// the same owner never double-count.
		if old.Size != updated.Size {
			return applyUsageDelta(tx, old.UserID, updated.Size-old.Size)
		}
		return nil
	case old.Counted() && !updated.Counted():
		return applyUsageDelta(tx, old.UserID, -old.Size)
	case !old.Counted() && updated.Counted():
		return applyUsageDelta(tx, old.UserID, updated.Size)
	default:
		return nil
	}
}

// UsageReport compares the ledger against a full recomputation.
type UsageReport struct {
	OwnerID  uint64 `json:"owner_id"`
	Ledger   int64  `json:"ledger"`
	Computed int64  `json:"computed"`
	Drift    int64  `json:"drift"`
}

// RecomputeUsage sums the owner's non-recycled file sizes and reports drift
// against the ledger. Read-only: the ledger is not touched here.
func RecomputeUsage(ownerID uint64) (*UsageReport, error) {
	var user model.User
	if err := repo.Db.Where("id = ?", ownerID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var computed int64
	err := repo.Db.Model(&model.File{}).
		Where("user_id = ? AND is_deleted = 0", ownerID).
		Select("COALESCE(SUM(size), 0)").
		Scan(&computed).Error
	if err != nil {
		return nil, err
	}
	return &UsageReport{
		OwnerID:  ownerID,
		Ledger:   user.StorageUsed,
		Computed: computed,
		Drift:    user.StorageUsed - computed,
	}, nil
}

// ReconcileUsage recomputes and, when drift is found, rewrites the ledger to
// the computed value. Guarded by a Redis lock so at most one instance runs
// the correction for an owner at a time.
func ReconcileUsage(ctx context.Context, ownerID uint64) (*UsageReport, error) {
	lock := repo.NewRedisLock(repo.Redis, fmt.Sprintf("reconcile:usage:%d", ownerID), 30*time.Second)
	if err := lock.Lock(ctx); err != nil {
		return nil, err
	}
	defer lock.Unlock(ctx)

	report, err := RecomputeUsage(ownerID)
	if err != nil {
		return nil, err
	}
	if report.Drift == 0 {
		return report, nil
	}
	err = repo.Db.Model(&model.User{}).
		Where("id = ?", ownerID).
		UpdateColumn("storage_used", report.Computed).Error
	if err != nil {
		return nil, err
	}
	return report, nil
}
