package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Flag is a boolean the store API encodes as 0/1.
type Flag bool

// UnmarshalJSON accepts 0, 1, true, false and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "0", "false", `"0"`, `"false"`:
		*f = false
		return nil
	case "1", "true", `"1"`, `"true"`:
		*f = true
		return nil
	}
	return fmt.Errorf("invalid flag value %s", data)
}

// MarshalJSON encodes the flag the way the store API does.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// User is the authenticated identity resolved from the store API.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	IsAdmin   Flag      `json:"is_admin"`
	AddressID int64     `json:"address_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Stores    []Store   `json:"stores"`
}

// OwnsStore reports whether storeID is among the stores the user owns.
func (u *User) OwnsStore(storeID int64) bool {
	if u == nil {
		return false
	}
	for _, s := range u.Stores {
		if s.ID == storeID {
			return true
		}
	}
	return false
}

// Clone returns a copy whose Stores slice can be mutated independently.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Stores = append([]Store(nil), u.Stores...)
	return &cp
}

// ParseID parses a numeric route identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
