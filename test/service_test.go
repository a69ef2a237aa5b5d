package test

import (
	"GoVault/config"
	"GoVault/internal/dto"
	"GoVault/internal/repo"
	"GoVault/internal/service"
	"GoVault/internal/storage"
	"GoVault/model"
	"log"
	"os"
	"testing"
)

// TestMain sets up the test environment.
func TestMain(m *testing.M) {
	config.InitConfig()
	repo.InitMysqlTest()
	repo.InitRedis()
	storage.InitMinioTest()
	log.Println("[testmain] redis db =", repo.Redis.Options().DB)

	cleanupAllTables()

	code := m.Run()
	os.Exit(code)
}

// cleanupAllTables clears table data without dropping the schema.
func cleanupAllTables() {
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 0")

	tables := []string{
		"share_link",
		"file",
		"folder",
		"user_db",
	}
	for _, table := range tables {
		if err := repo.Db.Exec("DELETE FROM " + table).Error; err != nil {
			panic("clean " + table + " table failed: " + err.Error())
		}
	}

	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 1")
}

// cleanTables clears all tables between tests.
func cleanTables(t *testing.T) {
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 0")

	tables := []string{"share_link", "file", "folder", "user_db"}
	for _, table := range tables {
		if err := repo.Db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clean %s table failed: %v", table, err)
		}
	}

	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 1")
}

// createTestUser creates an active user for tests.
func createTestUser(t *testing.T, name string) *model.User {
	user := &model.User{
		UserName: name,
		Password: "123456",
		Email:    name + "@test.com",
		IsActive: true,
	}
	if err := service.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

// reloadUser reads the user row back from the database.
func reloadUser(t *testing.T, id uint64) *model.User {
	var user model.User
	if err := repo.Db.Where("id = ?", id).First(&user).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return &user
}

// insertOneFile inserts a single file record through the registry.
func insertOneFile(t *testing.T, ownerID uint64, name string, size int64) *model.File {
	files, err := service.BulkInsertFiles(ownerID, []dto.NewFileRecord{
		{
			Name:         name,
			OriginalName: name,
			Locator:      "blob/" + name,
			ContentType:  "application/octet-stream",
			Size:         size,
		},
	})
	if err != nil {
		t.Fatalf("BulkInsertFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 inserted file, got %d", len(files))
	}
	return &files[0]
}
