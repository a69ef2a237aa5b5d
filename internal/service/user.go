package service

import (
	"GoVault/config"
	"GoVault/internal/repo"
	"GoVault/model"
	"GoVault/utils"
	"errors"
)

// CreateUser hashes the password and creates a user with the default
// storage limit. The ledger starts at zero and is only moved by the
// usage accountant afterwards.
func CreateUser(user *model.User) error {
	user.Password = utils.GetPwd(user.Password)
	if user.StorageLimit == 0 {
		user.StorageLimit = config.AppConfig.DefaultStorageLimit
	}
	if err := repo.Db.Create(user).Error; err != nil {
		return err
	}
	return nil
}

// FindIdByUsername returns user ID by username.
func FindIdByUsername(username string) (uint64, error) {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("user_name = ?", username).First(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// IsExist checks whether a user exists.
func IsExist(username string) (*model.User, error) {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("user_name = ?", username).First(&user).Error; err != nil {
		return &model.User{}, err
	}
	return &user, nil
}

// CheckPassword verifies a user's password.
func CheckPassword(username, password string) error {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("user_name = ?", username).First(&user).Error; err != nil {
		return err
	}
	if !utils.CheckPwd(password, user.Password) {
		return errors.New("password error")
	}
	return nil
}

// IsEmailExist checks whether an email exists.
func IsEmailExist(email string) error {
	var user model.User
	if err := repo.Db.Model(&model.User{}).Where("email = ?", email).First(&user).Error; err != nil {
		return err
	}
	return nil
}
