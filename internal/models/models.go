package models

import "time"

// OrderStatus - статус заказа в жизненном цикле
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal сообщает, является ли статус конечным
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ProductType - тип цифрового товара
type ProductType string

const (
	ProductTypeAccount ProductType = "account"
	ProductTypeKey     ProductType = "key"
	ProductTypePromo   ProductType = "promo"
)

// ValidProductType проверяет принадлежность значения к известным типам товара
func ValidProductType(t ProductType) bool {
	switch t {
	case ProductTypeAccount, ProductTypeKey, ProductTypePromo:
		return true
	}
	return false
}

// WarehouseAction - действие администратора на складе
type WarehouseAction string

const (
	ActionAddProduct     WarehouseAction = "add_product"
	ActionMassAddProduct WarehouseAction = "mass_add_product"
	ActionEditProduct    WarehouseAction = "edit_product"
	ActionGiveProduct    WarehouseAction = "give_product"
	ActionCreateCategory WarehouseAction = "create_category"
)

// User - пользователь магазина. ID приходит из Telegram и назначается извне.
type User struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Language         string    `db:"language"`
	Balance          float64   `db:"balance"`
	TotalOrders      int       `db:"total_orders"`
	TotalSpent       float64   `db:"total_spent"`
	ReferrerID       *int64    `db:"referrer_id"`
	ReferralCode     string    `db:"referral_code"`
	PromoCode        string    `db:"promo_code"`
	ReferralEarnings float64   `db:"referral_earnings"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Category - группа товаров в каталоге
type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	SortOrder   int       `db:"sort_order"`
	CreatedAt   time.Time `db:"created_at"`
}

// Product - единица продажи
type Product struct {
	ID             int64       `db:"id"`
	Name           string      `db:"name"`
	Description    string      `db:"description"`
	Price          float64     `db:"price"`
	CategoryID     int64       `db:"category_id"`
	ProductType    ProductType `db:"product_type"`
	Duration       string      `db:"duration"`
	DigitalContent string      `db:"digital_content"`
	StockQuantity  int         `db:"stock_quantity"`
	IsUnlimited    bool        `db:"is_unlimited"`
	IsActive       bool        `db:"is_active"`
	TotalSold      int         `db:"total_sold"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// Available сообщает, можно ли сейчас продать товар
func (p *Product) Available() bool {
	return p.IsActive && (p.IsUnlimited || p.StockQuantity > 0)
}

// HasStock проверяет остаток под нужное количество
func (p *Product) HasStock(qty int) bool {
	return p.IsUnlimited || p.StockQuantity >= qty
}

// Order - покупка одного товара одним пользователем.
// Цены фиксируются при создании и больше не пересчитываются.
type Order struct {
	ID               int64       `db:"id"`
	UserID           int64       `db:"user_id"`
	ProductID        int64       `db:"product_id"`
	Quantity         int         `db:"quantity"`
	UnitPrice        float64     `db:"unit_price"`
	TotalPrice       float64     `db:"total_price"`
	Status           OrderStatus `db:"status"`
	DeliveredContent *string     `db:"delivered_content"`
	DeliveredAt      *time.Time  `db:"delivered_at"`
	Notes            string      `db:"notes"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// CanTransition проверяет допустимость перехода заказа в новый статус.
// Единственная точка, где описана матрица переходов.
func (o *Order) CanTransition(to OrderStatus) bool {
	switch to {
	case OrderStatusPaid:
		return o.Status == OrderStatusPending
	case OrderStatusDelivered:
		return o.Status == OrderStatusPaid
	case OrderStatusCancelled:
		return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
	}
	return false
}

// ReferralAccrual - неизменяемая запись о начислении рефереру.
// Пишется один раз при оплате заказа и никогда не откатывается.
type ReferralAccrual struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	OrderID       int64     `db:"order_id"`
	RewardAmount  float64   `db:"reward_amount"`
	RewardPercent float64   `db:"reward_percent"`
	CreatedAt     time.Time `db:"created_at"`
}

// WarehouseLog - строка журнала складских действий администратора.
// Для действий уровня категории product_id равен нулю.
type WarehouseLog struct {
	ID                int64           `db:"id"`
	ProductID         int64           `db:"product_id"`
	AdminID           int64           `db:"admin_id"`
	AdminUsername     string          `db:"admin_username"`
	RecipientID       *int64          `db:"recipient_id"`
	RecipientUsername string          `db:"recipient_username"`
	Action            WarehouseAction `db:"action"`
	Quantity          int             `db:"quantity"`
	DeliveredContent  string          `db:"delivered_content"`
	Description       string          `db:"description"`
	CreatedAt         time.Time       `db:"created_at"`
}
