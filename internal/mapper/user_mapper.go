package mapper

import (
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		FirstName: derefString(u.FirstName),
		LastName:  derefString(u.LastName),
		Email:     u.Email,
	}
}

// ToModel only carries the identity fields; dataset columns stay NULL for
// users created through the API.
func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	firstName := u.FirstName
	lastName := u.LastName
	return &model.User{
		Id:        u.Id,
		FirstName: &firstName,
		LastName:  &lastName,
		Email:     u.Email,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
