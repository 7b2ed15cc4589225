package identity

import (
	"errors"
	"regexp"
	"strings"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/model"
	"gorm.io/gorm"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress 是否为合法的钱包地址格式
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Service 用户名与钱包地址目录。最终一致的外部目录，
// 仅用于把人类可读的用户名解析成地址，不参与任何资金判定。
type Service struct {
	db *gorm.DB
}

// New 创建身份目录服务
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Resolve 用户名解析为钱包地址
func (s *Service) Resolve(username string) (string, error) {
	var user model.UserModel
	err := s.db.Where("username = ?", strings.ToLower(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.Newf(errs.KindNotFound, "no wallet registered for username %q", username)
		}
		return "", errs.Wrap(errs.KindTransport, "failed to query user", err)
	}
	return user.WalletAddress, nil
}

// Reverse 钱包地址反查用户名
func (s *Service) Reverse(address string) (*model.UserModel, error) {
	var user model.UserModel
	err := s.db.Where("lower(wallet_address) = ?", strings.ToLower(address)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "no username registered for address %s", address)
		}
		return nil, errs.Wrap(errs.KindTransport, "failed to query user", err)
	}
	return &user, nil
}

// Upsert 注册或更新映射，用户名统一小写
func (s *Service) Upsert(username, walletAddress, discordId string) (*model.UserModel, error) {
	if username == "" {
		return nil, errs.New(errs.KindValidation, "username is required")
	}
	if !IsAddress(walletAddress) {
		return nil, errs.New(errs.KindValidation, "invalid wallet address format")
	}

	username = strings.ToLower(username)

	var user model.UserModel
	err := s.db.Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.UserModel{
			Username:      username,
			WalletAddress: walletAddress,
			DiscordId:     discordId,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, errs.Wrap(errs.KindTransport, "failed to create user", err)
		}
	case err != nil:
		return nil, errs.Wrap(errs.KindTransport, "failed to query user", err)
	default:
		user.WalletAddress = walletAddress
		if discordId != "" {
			user.DiscordId = discordId
		}
		if err := s.db.Save(&user).Error; err != nil {
			return nil, errs.Wrap(errs.KindTransport, "failed to update user", err)
		}
	}

	return &user, nil
}

// Remove 删除映射
func (s *Service) Remove(username string) error {
	result := s.db.Where("username = ?", strings.ToLower(username)).Delete(&model.UserModel{})
	if result.Error != nil {
		return errs.Wrap(errs.KindTransport, "failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.Newf(errs.KindNotFound, "no wallet registered for username %q", username)
	}
	return nil
}
