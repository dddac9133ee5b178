package model

import "time"

type Message struct {
	Id        uint   `gorm:"primaryKey;autoIncrement"`
	SessionId uint   `gorm:"not null;index"`
	Sender    string `gorm:"type:text;not null"` // "user" or "ai", not enforced here
	Content   string `gorm:"type:text;not null"`

	// Timestamp is set by the service; autoCreateTime only fills it when left zero.
	Timestamp time.Time `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
