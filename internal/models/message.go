package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	gorm.Model
	TripID   uint      `json:"tripId" gorm:"column:trip_id;not null;index"`
	Trip     Trip      `json:"-" gorm:"foreignKey:TripID"`
	SenderID uint      `json:"senderId" gorm:"column:sender_id;not null"`
	Sender   User      `json:"sender" gorm:"foreignKey:SenderID"`
	Content  string    `json:"content" gorm:"column:content;not null"`
	SentAt   time.Time `json:"sentAt" gorm:"column:sent_at;not null;index"`
	IsRead   bool      `json:"isRead" gorm:"column:is_read;not null;default:false"`
}
