package model

import "time"

type ChatSession struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	UserId    uint      `gorm:"not null;index"`
	Title     string    `gorm:"type:varchar(255);default:'New Chat'"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	User     *User     `gorm:"foreignKey:UserId;constraint:OnDelete:RESTRICT"`
	Messages []Message `gorm:"foreignKey:SessionId;constraint:OnDelete:RESTRICT"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
