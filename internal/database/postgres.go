package database

import (
	"context"
	"fmt"

	"digital-store-bot/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // драйвер для PostgreSQL
	"go.uber.org/zap"
)

// Store оборачивает пул соединений и даёт транзакционный примитив.
// Все записи, затрагивающие несколько сущностей, идут через WithTransaction.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewConnection создает новое подключение к базе данных
func NewConnection(cfg config.Database, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		logger.Error("Ошибка подключения к базе данных", zap.Error(err))
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	// Установка настроек пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		logger.Error("Ошибка проверки подключения к базе данных", zap.Error(err))
		return nil, fmt.Errorf("не удалось проверить подключение к базе данных: %w", err)
	}

	logger.Info("Успешное подключение к базе данных")
	return &Store{db: db, logger: logger}, nil
}

// DB возвращает пул для одиночных запросов вне транзакции
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close закрывает пул соединений
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTransaction выполняет fn внутри одной транзакции.
// Любая ошибка из fn откатывает всё, что fn успела записать.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("Ошибка при начале транзакции", zap.Error(err))
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Ошибка при откате транзакции", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Ошибка при фиксации транзакции", zap.Error(err))
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}

	return nil
}
