package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound - пользователь не найден
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrProductNotFound - товар не найден
	ErrProductNotFound = errors.New("товар не найден")
	// ErrOrderNotFound - заказ не найден
	ErrOrderNotFound = errors.New("заказ не найден")
	// ErrCategoryNotFound - категория не найдена
	ErrCategoryNotFound = errors.New("категория не найдена")
	// ErrUnavailable - товар снят с продажи или закончился
	ErrUnavailable = errors.New("товар недоступен")
	// ErrInsufficientFunds - на балансе не хватает средств
	ErrInsufficientFunds = errors.New("недостаточно средств на балансе")
	// ErrIllegalTransition - операция не разрешена в текущем статусе заказа
	ErrIllegalTransition = errors.New("недопустимый переход статуса заказа")
	// ErrSelfReferral - попытка привязать самого себя как реферера
	ErrSelfReferral = errors.New("нельзя указать самого себя как реферера")
	// ErrReferrerAlreadySet - реферер уже привязан
	ErrReferrerAlreadySet = errors.New("реферер уже установлен")
	// ErrDuplicateContent - такой контент уже лежит на складе
	ErrDuplicateContent = errors.New("такой товар уже есть на складе")
)

// ErrReservationFailed возвращается, когда условное списание остатка не прошло:
// другой покупатель успел забрать последние единицы. Оборачивает ErrUnavailable,
// чтобы проигравший гонку покупатель получил обычное "товар недоступен".
var ErrReservationFailed = fmt.Errorf("не удалось зарезервировать товар: %w", ErrUnavailable)

// ValidationError - ошибка проверки входных данных при приемке на склад
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "ошибка валидации: " + e.Reason
}

func validationErr(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
