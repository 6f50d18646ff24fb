package domain

import (
	"encoding/json"
	"strings"
)

const RoleAdmin = "admin"

type Avatar struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// User is the authenticated shopper as reported by GET /auth/me.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Avatar Avatar `json:"avatar"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FirstName is the first word of the display name, "Customer" when empty.
func (u User) FirstName() string {
	parts := strings.Fields(u.Name)
	if len(parts) == 0 {
		return "Customer"
	}
	return parts[0]
}

// LastName is everything after the first word of the display name.
func (u User) LastName() string {
	parts := strings.Fields(u.Name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

// UnmarshalJSON accepts both the virtual "id" and the raw "_id" field.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}
