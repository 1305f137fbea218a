// services/users.go
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"task-reward-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	referralCodeLength  = 8
	referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func generateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = referralCodeCharset[n.Int64()]
	}
	return string(code), nil
}

func (s *UserService) uniqueReferralCode() (string, error) {
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		var n int64
		if err := s.DB.Model(&models.User{}).
			Where("referral_code = ?", code).
			Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code after 10 attempts")
}

// EnsureUser registers a user on first contact and is safe to call on
// every contact afterwards: it refreshes the chat handle and backfills a
// missing referral code without touching anything the ledger or referral
// graph owns.
func (s *UserService) EnsureUser(identifier, username, chatID string) (*models.User, error) {
	if identifier == "" {
		return nil, ErrInvalidInput
	}
	if username == "" {
		username = identifier
	}

	var user models.User
	err := s.DB.Where("identifier = ?", identifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		code, cerr := s.uniqueReferralCode()
		if cerr != nil {
			return nil, storeErr(cerr)
		}
		user = models.User{
			ID:           uuid.NewString(),
			Identifier:   identifier,
			Username:     username,
			ChatID:       chatID,
			ReferralCode: code,
		}
		if cerr := s.DB.Create(&user).Error; cerr != nil {
			if errors.Is(cerr, gorm.ErrDuplicatedKey) {
				// Lost a first-contact race; the existing row wins.
				if lerr := s.DB.Where("identifier = ?", identifier).First(&user).Error; lerr != nil {
					return nil, storeErr(lerr)
				}
				return &user, nil
			}
			return nil, storeErr(cerr)
		}
		return &user, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}

	updates := map[string]interface{}{}
	if chatID != "" && chatID != user.ChatID {
		updates["chat_id"] = chatID
		user.ChatID = chatID
	}
	if user.ReferralCode == "" {
		code, cerr := s.uniqueReferralCode()
		if cerr != nil {
			return nil, storeErr(cerr)
		}
		updates["referral_code"] = code
		user.ReferralCode = code
	}
	if len(updates) > 0 {
		if uerr := s.DB.Model(&models.User{}).
			Where("identifier = ?", identifier).
			Updates(updates).Error; uerr != nil {
			return nil, storeErr(uerr)
		}
	}
	return &user, nil
}

// GetByIdentifier fetches a user or ErrUserNotFound.
func (s *UserService) GetByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("identifier = ?", identifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr(err)
	}
	return &user, nil
}
