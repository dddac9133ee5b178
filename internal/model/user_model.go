package model

import "time"

// User carries the identity fields used by the chat API plus the demographic
// columns of the e-commerce dataset, which are only ever written by the loader.
type User struct {
	Id            uint    `gorm:"primaryKey;autoIncrement"`
	FirstName     *string `gorm:"type:varchar(255)"`
	LastName      *string `gorm:"type:varchar(255)"`
	Email         string  `gorm:"type:varchar(255);index"`
	Age           *int
	Gender        *string `gorm:"type:varchar(16)"`
	State         *string `gorm:"type:varchar(255)"`
	StreetAddress *string `gorm:"type:varchar(255)"`
	PostalCode    *string `gorm:"type:varchar(32)"`
	City          *string `gorm:"type:varchar(255)"`
	Country       *string `gorm:"type:varchar(255)"`
	Latitude      *float64
	Longitude     *float64
	TrafficSource *string `gorm:"type:varchar(64)"`
	CreatedAt     *time.Time
}

func (User) TableName() string {
	return "users"
}
