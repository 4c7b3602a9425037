package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"digital-store-bot/internal/config"

	_ "github.com/lib/pq"
)

const migrationSchema = `
CREATE TABLE IF NOT EXISTS users (
    id                BIGINT PRIMARY KEY,
    username          TEXT NOT NULL DEFAULT '',
    first_name        TEXT NOT NULL DEFAULT '',
    last_name         TEXT NOT NULL DEFAULT '',
    language          VARCHAR(10) NOT NULL DEFAULT 'ru',
    balance           NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
    total_orders      INTEGER NOT NULL DEFAULT 0,
    total_spent       NUMERIC(12,2) NOT NULL DEFAULT 0,
    referrer_id       BIGINT REFERENCES users(id),
    referral_code     VARCHAR(16) UNIQUE,
    promo_code        VARCHAR(32) UNIQUE,
    referral_earnings NUMERIC(12,2) NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    is_active   BOOLEAN NOT NULL DEFAULT true,
    sort_order  INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
    id              BIGSERIAL PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    price           NUMERIC(12,2) NOT NULL CHECK (price > 0),
    category_id     BIGINT NOT NULL REFERENCES categories(id),
    product_type    VARCHAR(16) NOT NULL,
    duration        TEXT NOT NULL DEFAULT '',
    digital_content TEXT NOT NULL DEFAULT '',
    stock_quantity  INTEGER NOT NULL DEFAULT 0,
    is_unlimited    BOOLEAN NOT NULL DEFAULT false,
    is_active       BOOLEAN NOT NULL DEFAULT true,
    total_sold      INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (is_unlimited OR stock_quantity >= 0)
);

CREATE TABLE IF NOT EXISTS orders (
    id                BIGSERIAL PRIMARY KEY,
    user_id           BIGINT NOT NULL REFERENCES users(id),
    product_id        BIGINT NOT NULL REFERENCES products(id),
    quantity          INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    unit_price        NUMERIC(12,2) NOT NULL,
    total_price       NUMERIC(12,2) NOT NULL CHECK (total_price >= 0),
    status            VARCHAR(16) NOT NULL DEFAULT 'pending',
    delivered_content TEXT,
    delivered_at      TIMESTAMPTZ,
    notes             TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS referral_accruals (
    id             BIGSERIAL PRIMARY KEY,
    user_id        BIGINT NOT NULL REFERENCES users(id),
    order_id       BIGINT NOT NULL REFERENCES orders(id),
    reward_amount  NUMERIC(12,2) NOT NULL,
    reward_percent NUMERIC(5,2) NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS warehouse_logs (
    id                 BIGSERIAL PRIMARY KEY,
    product_id         BIGINT NOT NULL DEFAULT 0,
    admin_id           BIGINT NOT NULL,
    admin_username     TEXT NOT NULL DEFAULT '',
    recipient_id       BIGINT,
    recipient_username TEXT NOT NULL DEFAULT '',
    action             VARCHAR(32) NOT NULL,
    quantity           INTEGER NOT NULL DEFAULT 0,
    delivered_content  TEXT NOT NULL DEFAULT '',
    description        TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active);
CREATE INDEX IF NOT EXISTS idx_referral_accruals_user_id ON referral_accruals(user_id);
CREATE INDEX IF NOT EXISTS idx_warehouse_logs_created_at ON warehouse_logs(created_at);
`

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Путь к файлу конфигурации")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Ошибка проверки подключения к базе данных: %v", err)
	}

	fmt.Println("Успешное подключение к базе данных")

	// Выполняем миграцию
	if _, err := db.Exec(migrationSchema); err != nil {
		log.Fatalf("Ошибка выполнения миграции: %v", err)
	}

	fmt.Println("Миграция успешно выполнена")
}
