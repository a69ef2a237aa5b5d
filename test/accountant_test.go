package test

import (
	"GoVault/internal/dto"
	"GoVault/internal/repo"
	"GoVault/internal/service"
	"GoVault/model"
	"context"
	"errors"
	"testing"
)

// TestLedgerFollowsInsert verifies that inserting records credits the ledger
// by exactly the sum of their sizes.
func TestLedgerFollowsInsert(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "ledger_insert")

	records := []dto.NewFileRecord{
		{Name: "a.txt", OriginalName: "a.txt", Locator: "blob/a", Size: 100},
		{Name: "b.txt", OriginalName: "b.txt", Locator: "blob/b", Size: 200},
		{Name: "c.txt", OriginalName: "c.txt", Locator: "blob/c", Size: 300},
	}
	if _, err := service.BulkInsertFiles(user.ID, records); err != nil {
		t.Fatalf("BulkInsertFiles failed: %v", err)
	}

	if got := reloadUser(t, user.ID).StorageUsed; got != 600 {
		t.Fatalf("storage_used = %d, want 600", got)
	}
}

// TestLedgerDeleteRestoreNetZero verifies the debit on soft delete and the
// matching credit on restore.
func TestLedgerDeleteRestoreNetZero(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "ledger_cycle")
	file := insertOneFile(t, user.ID, "cycle.bin", 1000)

	if _, err := service.SoftDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("SoftDeleteFile failed: %v", err)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 0 {
		t.Fatalf("storage_used after delete = %d, want 0", got)
	}

	if _, err := service.RestoreFile(user.ID, file.ID); err != nil {
		t.Fatalf("RestoreFile failed: %v", err)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 1000 {
		t.Fatalf("storage_used after restore = %d, want 1000", got)
	}
}

// TestLedgerDeleteIdempotent verifies that deleting an already recycled file
// does not debit the ledger a second time.
func TestLedgerDeleteIdempotent(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "ledger_idem")
	file := insertOneFile(t, user.ID, "idem.bin", 500)

	if _, err := service.SoftDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("first SoftDeleteFile failed: %v", err)
	}
	if _, err := service.SoftDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("second SoftDeleteFile failed: %v", err)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 0 {
		t.Fatalf("storage_used = %d, want 0", got)
	}

	// Restoring twice credits only once as well.
	if _, err := service.RestoreFile(user.ID, file.ID); err != nil {
		t.Fatalf("first RestoreFile failed: %v", err)
	}
	if _, err := service.RestoreFile(user.ID, file.ID); err != nil {
		t.Fatalf("second RestoreFile failed: %v", err)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 500 {
		t.Fatalf("storage_used = %d, want 500", got)
	}
}

// TestLedgerPurgeRecycled verifies that permanently deleting a recycled file
// leaves the ledger untouched, since the debit already happened on recycle.
func TestLedgerPurgeRecycled(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "ledger_purge")
	file := insertOneFile(t, user.ID, "purge.bin", 700)

	if _, err := service.SoftDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("SoftDeleteFile failed: %v", err)
	}
	purged, err := service.PermanentlyDeleteFile(user.ID, file.ID)
	if err != nil {
		t.Fatalf("PermanentlyDeleteFile failed: %v", err)
	}
	if purged.Locator != file.Locator {
		t.Fatalf("purged locator = %q, want %q", purged.Locator, file.Locator)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 0 {
		t.Fatalf("storage_used = %d, want 0", got)
	}

	var count int64
	repo.Db.Model(&model.File{}).Where("id = ?", file.ID).Count(&count)
	if count != 0 {
		t.Fatal("file row should be gone after permanent delete")
	}
}

// TestLedgerPurgeCounted verifies that permanently deleting a counted file
// debits the ledger once.
func TestLedgerPurgeCounted(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "ledger_purge2")
	file := insertOneFile(t, user.ID, "purge2.bin", 400)

	if _, err := service.PermanentlyDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("PermanentlyDeleteFile failed: %v", err)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 0 {
		t.Fatalf("storage_used = %d, want 0", got)
	}
}

// TestLedgerTransferMovesBytes verifies that an ownership transfer debits the
// giver and credits the receiver in one step.
func TestLedgerTransferMovesBytes(t *testing.T) {
	cleanTables(t)
	giver := createTestUser(t, "transfer_giver")
	receiver := createTestUser(t, "transfer_receiver")
	file := insertOneFile(t, giver.ID, "gift.bin", 900)

	moved, err := service.TransferFileOwner(giver.ID, file.ID, receiver.ID)
	if err != nil {
		t.Fatalf("TransferFileOwner failed: %v", err)
	}
	if moved.UserID != receiver.ID {
		t.Fatalf("owner = %d, want %d", moved.UserID, receiver.ID)
	}
	if moved.FolderID != nil {
		t.Fatal("transferred file should land at the receiver's root")
	}

	if got := reloadUser(t, giver.ID).StorageUsed; got != 0 {
		t.Fatalf("giver storage_used = %d, want 0", got)
	}
	if got := reloadUser(t, receiver.ID).StorageUsed; got != 900 {
		t.Fatalf("receiver storage_used = %d, want 900", got)
	}
}

// TestLedgerTransferRecycledFile verifies that transferring a recycled file
// moves the record but no bytes, since recycled files are not counted.
func TestLedgerTransferRecycledFile(t *testing.T) {
	cleanTables(t)
	giver := createTestUser(t, "transfer_giver2")
	receiver := createTestUser(t, "transfer_receiver2")
	file := insertOneFile(t, giver.ID, "gift2.bin", 300)

	if _, err := service.SoftDeleteFile(giver.ID, file.ID); err != nil {
		t.Fatalf("SoftDeleteFile failed: %v", err)
	}
	if _, err := service.TransferFileOwner(giver.ID, file.ID, receiver.ID); err != nil {
		t.Fatalf("TransferFileOwner failed: %v", err)
	}

	if got := reloadUser(t, giver.ID).StorageUsed; got != 0 {
		t.Fatalf("giver storage_used = %d, want 0", got)
	}
	if got := reloadUser(t, receiver.ID).StorageUsed; got != 0 {
		t.Fatalf("receiver storage_used = %d, want 0", got)
	}
}

// TestLedgerNeverNegative verifies the floor on the signed delta update.
func TestLedgerNeverNegative(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "ledger_floor")
	file := insertOneFile(t, user.ID, "floor.bin", 200)

	// Force drift: zero the ledger behind the accountant's back.
	if err := repo.Db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("storage_used", 0).Error; err != nil {
		t.Fatalf("force drift failed: %v", err)
	}

	if _, err := service.SoftDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("SoftDeleteFile failed: %v", err)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 0 {
		t.Fatalf("storage_used = %d, want 0 (floored)", got)
	}
}

// TestQuotaExceededRejectsBatch verifies that a batch pushing the owner past
// the limit is rejected wholesale and the ledger is untouched.
func TestQuotaExceededRejectsBatch(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "quota_user")
	if err := repo.Db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("storage_limit", 500).Error; err != nil {
		t.Fatalf("set limit failed: %v", err)
	}
	insertOneFile(t, user.ID, "first.bin", 400)

	_, err := service.BulkInsertFiles(user.ID, []dto.NewFileRecord{
		{Name: "big.bin", OriginalName: "big.bin", Locator: "blob/big", Size: 200},
	})
	if !errors.Is(err, service.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}

	if got := reloadUser(t, user.ID).StorageUsed; got != 400 {
		t.Fatalf("storage_used = %d, want 400", got)
	}
	var count int64
	repo.Db.Model(&model.File{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("file count = %d, want 1", count)
	}
}

// TestRecomputeMatchesLedger verifies that after a mixed sequence of
// operations the ledger equals a full recomputation.
func TestRecomputeMatchesLedger(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "recompute_user")

	a := insertOneFile(t, user.ID, "ra.bin", 100)
	insertOneFile(t, user.ID, "rb.bin", 250)
	c := insertOneFile(t, user.ID, "rc.bin", 50)

	if _, err := service.SoftDeleteFile(user.ID, a.ID); err != nil {
		t.Fatalf("SoftDeleteFile failed: %v", err)
	}
	if _, err := service.PermanentlyDeleteFile(user.ID, c.ID); err != nil {
		t.Fatalf("PermanentlyDeleteFile failed: %v", err)
	}
	if _, err := service.RestoreFile(user.ID, a.ID); err != nil {
		t.Fatalf("RestoreFile failed: %v", err)
	}

	report, err := service.RecomputeUsage(user.ID)
	if err != nil {
		t.Fatalf("RecomputeUsage failed: %v", err)
	}
	if report.Drift != 0 {
		t.Fatalf("drift = %d (ledger %d, computed %d), want 0",
			report.Drift, report.Ledger, report.Computed)
	}
	if report.Ledger != 350 {
		t.Fatalf("ledger = %d, want 350", report.Ledger)
	}
}

// TestReconcileRepairsDrift verifies that reconciliation rewrites a drifted
// ledger to the computed value.
func TestReconcileRepairsDrift(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "reconcile_user")
	insertOneFile(t, user.ID, "drift.bin", 800)

	if err := repo.Db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("storage_used", 9999).Error; err != nil {
		t.Fatalf("force drift failed: %v", err)
	}

	report, err := service.ReconcileUsage(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ReconcileUsage failed: %v", err)
	}
	if report.Drift != 9999-800 {
		t.Fatalf("reported drift = %d, want %d", report.Drift, 9999-800)
	}
	if got := reloadUser(t, user.ID).StorageUsed; got != 800 {
		t.Fatalf("storage_used after reconcile = %d, want 800", got)
	}
}
