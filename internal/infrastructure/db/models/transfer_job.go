package models

import "time"

type TransferJob struct {
	ID              string  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OrderID         string  `gorm:"type:uuid;index;not null"`
	SourceGroupLink string  `gorm:"type:text;not null"`
	TargetGroupLink string  `gorm:"type:text;not null"`
	MemberLimit     int     `gorm:"not null"`
	Status          string  `gorm:"type:text;not null"`
	TotalCount      int     `gorm:"not null;default:0"`
	CompletedCount  int     `gorm:"not null;default:0"`
	FailedCount     int     `gorm:"not null;default:0"`
	SkippedCount    int     `gorm:"not null;default:0"`
	Attempts        int     `gorm:"not null;default:0"`
	MaxAttempts     int     `gorm:"not null;default:3"`
	ErrorMessage    *string `gorm:"type:text"`
	HeartbeatAt     *time.Time
	LeaseExpiresAt  *time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (TransferJob) TableName() string {
	return "transfer_jobs"
}
