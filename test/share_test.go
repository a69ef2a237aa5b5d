package test

import (
	"GoVault/internal/repo"
	"GoVault/internal/service"
	"GoVault/model"
	"errors"
	"sync"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

// reloadLink reads the share link row back from the database.
func reloadLink(t *testing.T, id uint64) *model.ShareLink {
	var link model.ShareLink
	if err := repo.Db.Where("id = ?", id).First(&link).Error; err != nil {
		t.Fatalf("reload share link failed: %v", err)
	}
	return &link
}

// TestCreateShareLink tests share creation for an owned file.
func TestCreateShareLink(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_owner")
	file := insertOneFile(t, user.ID, "shared.pdf", 1000)

	link, err := service.CreateShareLink(user.ID, file.ID, intPtr(24), "", intPtr(2))
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}
	if link.Token == "" {
		t.Fatal("token should not be empty")
	}
	if link.ExpireAt == nil || link.ExpireAt.Before(time.Now()) {
		t.Fatal("expiry should be set in the future")
	}
	if link.DownloadCount != 0 {
		t.Fatalf("download_count = %d, want 0", link.DownloadCount)
	}
}

// TestCreateShareNotOwner verifies the ownership guard on creation.
func TestCreateShareNotOwner(t *testing.T) {
	cleanTables(t)
	owner := createTestUser(t, "share_guard_owner")
	intruder := createTestUser(t, "share_guard_intruder")
	file := insertOneFile(t, owner.ID, "guarded.pdf", 10)

	if _, err := service.CreateShareLink(intruder.ID, file.ID, nil, "", nil); !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

// TestCreateShareValidation tests rejection of non-positive expiry and limit.
func TestCreateShareValidation(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_validate")
	file := insertOneFile(t, user.ID, "v.pdf", 10)

	if _, err := service.CreateShareLink(user.ID, file.ID, intPtr(0), "", nil); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("zero expiry err = %v, want ErrValidation", err)
	}
	if _, err := service.CreateShareLink(user.ID, file.ID, nil, "", intPtr(-1)); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("negative limit err = %v, want ErrValidation", err)
	}
}

// TestRedeemShareScenario walks a link with limit 2 through both redemptions
// and the rejection of the third.
func TestRedeemShareScenario(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_scenario")
	file := insertOneFile(t, user.ID, "scenario.bin", 1000)

	link, err := service.CreateShareLink(user.ID, file.ID, nil, "", intPtr(2))
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := service.RedeemShareLink(link.Token, "")
		if err != nil {
			t.Fatalf("redemption %d failed: %v", i+1, err)
		}
		if result.Locator != file.Locator {
			t.Fatalf("locator = %q, want %q", result.Locator, file.Locator)
		}
	}

	if _, err := service.RedeemShareLink(link.Token, ""); !errors.Is(err, service.ErrLimitReached) {
		t.Fatalf("third redemption err = %v, want ErrLimitReached", err)
	}
	if got := reloadLink(t, link.ID).DownloadCount; got != 2 {
		t.Fatalf("download_count = %d, want 2", got)
	}
}

// TestRedeemUnknownToken tests the invalid-token guard.
func TestRedeemUnknownToken(t *testing.T) {
	cleanTables(t)

	if _, err := service.RedeemShareLink("no-such-token", ""); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if _, err := service.RedeemShareLink("", ""); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("empty token err = %v, want ErrInvalidToken", err)
	}
}

// TestRedeemExpiredBeforePassword verifies both the expiry guard and its
// position in the chain: an expired link reports expiry even when the
// password is also wrong.
func TestRedeemExpiredBeforePassword(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_expired")
	file := insertOneFile(t, user.ID, "expired.bin", 10)

	link, err := service.CreateShareLink(user.ID, file.ID, intPtr(1), "secret", nil)
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := repo.Db.Model(&model.ShareLink{}).
		Where("id = ?", link.ID).
		Update("expire_at", past).Error; err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}

	if _, err := service.RedeemShareLink(link.Token, "wrong"); !errors.Is(err, service.ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	if _, err := service.RedeemShareLink(link.Token, "secret"); !errors.Is(err, service.ErrExpired) {
		t.Fatalf("correct password on expired link err = %v, want ErrExpired", err)
	}
	if got := reloadLink(t, link.ID).DownloadCount; got != 0 {
		t.Fatalf("download_count = %d, want 0", got)
	}
}

// TestRedeemWrongPassword verifies the password guard and that failures do
// not consume a redemption.
func TestRedeemWrongPassword(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_password")
	file := insertOneFile(t, user.ID, "locked.bin", 10)

	link, err := service.CreateShareLink(user.ID, file.ID, nil, "hunter2", intPtr(1))
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	if _, err := service.RedeemShareLink(link.Token, "wrong"); !errors.Is(err, service.ErrInvalidPassword) {
		t.Fatalf("err = %v, want ErrInvalidPassword", err)
	}
	if got := reloadLink(t, link.ID).DownloadCount; got != 0 {
		t.Fatalf("download_count = %d, want 0 after a failed attempt", got)
	}

	if _, err := service.RedeemShareLink(link.Token, "hunter2"); err != nil {
		t.Fatalf("correct password redemption failed: %v", err)
	}
}

// TestRedeemConcurrentLimitOne fires concurrent redeemers at a limit-1 link
// and expects exactly one of them to get through.
func TestRedeemConcurrentLimitOne(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_race")
	file := insertOneFile(t, user.ID, "race.bin", 10)

	link, err := service.CreateShareLink(user.ID, file.ID, nil, "", intPtr(1))
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	const redeemers = 8
	var wg sync.WaitGroup
	results := make(chan error, redeemers)
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RedeemShareLink(link.Token, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success, limited := 0, 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, service.ErrLimitReached):
			limited++
		default:
			t.Fatalf("unexpected redemption error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("successes = %d, want exactly 1", success)
	}
	if limited != redeemers-1 {
		t.Fatalf("limit rejections = %d, want %d", limited, redeemers-1)
	}
	if got := reloadLink(t, link.ID).DownloadCount; got != 1 {
		t.Fatalf("download_count = %d, want 1", got)
	}
}

// TestRedeemRecycledFileConsumesUse verifies that a redemption against a
// recycled file fails as unavailable but still consumes a use.
func TestRedeemRecycledFileConsumesUse(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_unavailable")
	file := insertOneFile(t, user.ID, "vanishing.bin", 10)

	link, err := service.CreateShareLink(user.ID, file.ID, nil, "", intPtr(2))
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}
	if _, err := service.SoftDeleteFile(user.ID, file.ID); err != nil {
		t.Fatalf("SoftDeleteFile failed: %v", err)
	}

	if _, err := service.RedeemShareLink(link.Token, ""); !errors.Is(err, service.ErrFileUnavailable) {
		t.Fatalf("err = %v, want ErrFileUnavailable", err)
	}
	if got := reloadLink(t, link.ID).DownloadCount; got != 1 {
		t.Fatalf("download_count = %d, want 1", got)
	}
}

// TestDeactivateShare verifies that a deactivated link behaves like an
// unknown token and that only the creator may deactivate it.
func TestDeactivateShare(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_deactivate")
	intruder := createTestUser(t, "share_deactivate_other")
	file := insertOneFile(t, user.ID, "deact.bin", 10)

	link, err := service.CreateShareLink(user.ID, file.ID, nil, "", nil)
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	if err := service.DeactivateShareLink(intruder.ID, link.ID); !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("intruder deactivate err = %v, want ErrNotAuthorized", err)
	}
	if err := service.DeactivateShareLink(user.ID, link.ID); err != nil {
		t.Fatalf("DeactivateShareLink failed: %v", err)
	}
	if _, err := service.RedeemShareLink(link.Token, ""); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("redeem after deactivation err = %v, want ErrInvalidToken", err)
	}
}

// TestGetShareInfo verifies the public metadata view and that reading it
// never consumes a redemption.
func TestGetShareInfo(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_info")
	file := insertOneFile(t, user.ID, "info.pdf", 2048)

	link, err := service.CreateShareLink(user.ID, file.ID, intPtr(48), "pw", intPtr(3))
	if err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	info, err := service.GetShareInfo(link.Token)
	if err != nil {
		t.Fatalf("GetShareInfo failed: %v", err)
	}
	if info.FileName != "info.pdf" || info.Size != 2048 || !info.NeedPassword {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := reloadLink(t, link.ID).DownloadCount; got != 0 {
		t.Fatalf("download_count = %d, want 0", got)
	}
}

// TestListShareLinks tests listing links for an owned file.
func TestListShareLinks(t *testing.T) {
	cleanTables(t)
	user := createTestUser(t, "share_list")
	file := insertOneFile(t, user.ID, "listed.bin", 10)

	if _, err := service.CreateShareLink(user.ID, file.ID, nil, "", nil); err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}
	if _, err := service.CreateShareLink(user.ID, file.ID, nil, "", nil); err != nil {
		t.Fatalf("CreateShareLink failed: %v", err)
	}

	links, err := service.ListShareLinks(user.ID, file.ID)
	if err != nil {
		t.Fatalf("ListShareLinks failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("link count = %d, want 2", len(links))
	}
}
