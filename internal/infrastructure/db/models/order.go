package models

import "time"

type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	UserID          string          `gorm:"type:uuid;index;not null"`
	SourceGroupLink string          `gorm:"type:text;not null"`
	TargetGroupLink string          `gorm:"type:text;not null"`
	Quantity        int             `gorm:"not null"`
	CurrentCount    int             `gorm:"not null;default:0"`
	Status          string          `gorm:"type:text;not null;default:PENDING"`
	Progress        []OrderProgress `gorm:"foreignKey:OrderID"`
	StartedAt       *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Order) TableName() string {
	return "orders"
}

type OrderProgress struct {
	ID        int64  `gorm:"primaryKey"`
	OrderID   string `gorm:"type:uuid;index;not null"`
	Count     int    `gorm:"not null"`
	Message   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (OrderProgress) TableName() string {
	return "order_progress"
}

type Notification struct {
	ID        string `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    string `gorm:"type:uuid;index;not null"`
	Title     string `gorm:"size:255;not null"`
	Message   string `gorm:"type:text;not null"`
	Type      string `gorm:"type:text;not null"`
	ActionURL string `gorm:"type:text"`
	Read      bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
