package database

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound - запрошенная запись отсутствует
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict - нарушение уникальности данных
	ErrConflict = errors.New("конфликт данных")
	// ErrConstraint - нарушение ограничения схемы (CHECK, FK)
	ErrConstraint = errors.New("нарушение ограничения базы данных")
)

const (
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqForeignKeyViolation = "23503"
)

// mapError переводит ошибки драйвера в типизированные ошибки слоя.
// Нарушения ограничений никогда не проглатываются.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrConflict
		case pqCheckViolation, pqForeignKeyViolation:
			return ErrConstraint
		}
	}

	return err
}
