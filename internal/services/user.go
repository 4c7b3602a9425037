package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 8
)

// UserService создает пользователей при первом обращении,
// выдает реферальные коды и меняет баланс
type UserService struct {
	store  TxRunner
	users  UserStore
	logger *zap.Logger
}

// NewUserService создает новый сервис пользователей
func NewUserService(store TxRunner, users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// Profile - поля профиля, приходящие из чата при каждом обращении
type Profile struct {
	Username  string
	FirstName string
	LastName  string
	Language  string
}

// GetOrCreate возвращает пользователя, создавая его при первом обращении.
// Новому пользователю генерируются уникальные реферальный код и промокод;
// при повторных обращениях обновляются только поля профиля.
func (s *UserService) GetOrCreate(ctx context.Context, id int64, profile Profile) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.store.DB(), id)
	if err == nil {
		user.Username = profile.Username
		user.FirstName = profile.FirstName
		user.LastName = profile.LastName
		if profile.Language != "" {
			user.Language = profile.Language
		}
		if err := s.users.UpdateProfile(ctx, s.store.DB(), user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	language := profile.Language
	if language == "" {
		language = "ru"
	}

	newUser := &models.User{
		ID:           id,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Language:     language,
		ReferralCode: s.generateUniqueCode(ctx, s.users.ReferralCodeExists),
		PromoCode:    s.generateUniqueCode(ctx, s.users.PromoCodeExists),
	}

	if err := s.users.Create(ctx, s.store.DB(), newUser); err != nil {
		return nil, err
	}

	s.logger.Info("создан новый пользователь",
		zap.Int64("user_id", id),
		zap.String("username", profile.Username),
		zap.String("referral_code", newUser.ReferralCode),
	)

	return s.users.GetByID(ctx, s.store.DB(), id)
}

// SetReferrer привязывает реферера по коду. Привязка проходит только если
// реферер еще не задан и код принадлежит другому существующему пользователю.
func (s *UserService) SetReferrer(ctx context.Context, userID int64, code string) error {
	referrer, err := s.users.GetByReferralCode(ctx, s.store.DB(), code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if referrer.ID == userID {
		return ErrSelfReferral
	}

	ok, err := s.users.SetReferrer(ctx, s.store.DB(), userID, referrer.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReferrerAlreadySet
	}

	s.logger.Info("привязан реферер",
		zap.Int64("user_id", userID),
		zap.Int64("referrer_id", referrer.ID),
	)

	return nil
}

// AdjustBalance атомарно изменяет баланс пользователя.
// Пополнение приходит как внешний кредит; списание не уводит баланс в минус.
func (s *UserService) AdjustBalance(ctx context.Context, userID int64, delta float64) error {
	if _, err := s.users.GetByID(ctx, s.store.DB(), userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	ok, err := s.users.AdjustBalance(ctx, s.store.DB(), userID, roundMoney(delta))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientFunds
	}

	return nil
}

// GetByID возвращает пользователя по идентификатору чата
func (s *UserService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.store.DB(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// generateUniqueCode подбирает свободный код с проверкой коллизий.
// После десяти неудачных попыток половину кода берет от текущего времени.
func (s *UserService) generateUniqueCode(ctx context.Context, exists func(context.Context, sqlx.ExtContext, string) (bool, error)) string {
	for attempts := 0; attempts < 10; attempts++ {
		code := randomCode(codeLength)

		taken, err := exists(ctx, s.store.DB(), code)
		if err != nil {
			s.logger.Warn("Ошибка проверки уникальности кода", zap.Error(err))
			continue
		}
		if !taken {
			return code
		}
	}

	code := fmt.Sprintf("%s%04d", randomCode(codeLength-4), time.Now().UnixNano()%10000)
	if taken, err := exists(ctx, s.store.DB(), code); err != nil || taken {
		// Последний рубеж - уникальный индекс в базе: занятый код
		// всплывет как ErrConflict при вставке
		s.logger.Warn("Свободный код не подобран", zap.String("code", code))
	}
	return code
}

func randomCode(length int) string {
	result := strings.Builder{}
	for i := 0; i < length; i++ {
		result.WriteByte(codeCharset[rand.Intn(len(codeCharset))])
	}
	return result.String()
}
