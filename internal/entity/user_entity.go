package entity

import "strings"

type User struct {
	Id        uint
	FirstName string
	LastName  string
	Email     string
}

// FullName joins the stored name parts back into a display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SplitName splits a display name on its first space. A single word becomes the
// first name with an empty last name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	parts := strings.SplitN(name, " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
