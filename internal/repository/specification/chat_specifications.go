package specification

import "gorm.io/gorm"

type ByChatSessionID struct {
	ChatSessionID uint
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.ChatSessionID)
}

// NewestSessionsFirst orders sessions by creation time, newest first, with the
// id as tie breaker for rows created within the same microsecond.
func NewestSessionsFirst() []Specification {
	return []Specification{
		OrderBy{Field: "created_at", Desc: true},
		OrderBy{Field: "id", Desc: true},
	}
}

// ChronologicalMessages orders messages oldest first with id as tie breaker.
func ChronologicalMessages() []Specification {
	return []Specification{
		OrderBy{Field: `"timestamp"`, Desc: false},
		OrderBy{Field: "id", Desc: false},
	}
}
