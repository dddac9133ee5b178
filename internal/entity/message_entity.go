package entity

import "time"

type Message struct {
	Id        uint
	SessionId uint
	Sender    string
	Content   string
	Timestamp time.Time
}
