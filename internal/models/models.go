package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

// ResetToken is a one-time password-recovery code. Expiry is checked on
// every read; a periodic sweep removes stale rows.
type ResetToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Code      string `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `gorm:"not null"                 json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Category    string  `gorm:"index;not null"           json:"category"`
	ImageURL    string  `json:"imageUrl"`
	ImageKey    string  `json:"-"`
	CreatorID   uint    `gorm:"index;not null"           json:"creator_id"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                 json:"id"`
	UserID    uint `gorm:"index;not null"             json:"user_id"`
	ProductID uint `gorm:"not null"                   json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type WishlistItem struct {
	ID        uint `gorm:"primaryKey"     json:"id"`
	UserID    uint `gorm:"index;not null" json:"user_id"`
	ProductID uint `gorm:"not null"       json:"product_id"`
}

type Order struct {
	ID            uint    `gorm:"primaryKey"    json:"id"`
	UserID        uint    `gorm:"index"         json:"user_id"`
	Name          string  `gorm:"not null"      json:"name"`
	Surname       string  `gorm:"not null"      json:"surname"`
	CompanyName   string  `json:"company_name,omitempty"`
	Street        string  `gorm:"not null"      json:"street"`
	ZipCode       string  `gorm:"not null"      json:"zip_code"`
	City          string  `gorm:"not null"      json:"city"`
	Phone         string  `gorm:"not null"      json:"phone"`
	Email         string  `gorm:"not null"      json:"email"`
	Message       string  `json:"message,omitempty"`
	PaymentMethod string  `gorm:"not null"      json:"payment_method"`
	DeliveryName  string  `gorm:"not null"      json:"delivery_name"`
	DeliveryPrice float64 `json:"delivery_price"`
	Total         float64 `gorm:"not null"      json:"total"`
	Paid          bool    `gorm:"default:false" json:"paid"`
	CreatedAt     int64   `gorm:"not null"      json:"created_at"`
}

// OrderItem snapshots a product at checkout time so later catalog edits
// do not rewrite order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Name      string  `gorm:"not null"       json:"name"`
	Price     float64 `gorm:"not null"       json:"price"`
	Quantity  uint    `gorm:"not null"       json:"quantity"`
}
