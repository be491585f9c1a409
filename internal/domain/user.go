package domain

import "time"

type User struct {
	ID             int64      `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	Role           Role       `json:"role" db:"role"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	Alias          *string    `json:"alias,omitempty" db:"alias"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	PhoneNumber    string     `json:"phone_number" db:"phone_number"`
	Country        string     `json:"country" db:"country"`
	AddressLine1   string     `json:"address_line_1" db:"address_line_1"`
	AddressLine2   *string    `json:"address_line_2,omitempty" db:"address_line_2"`
	Postcode       string     `json:"postcode" db:"postcode"`
	ImagePath      string     `json:"image_path" db:"image_path"`
	CalendarTokens []byte     `json:"-" db:"calendar_tokens"` // raw OAuth token JSON, advisors only
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// HasCalendarLinked reports whether the advisor completed the OAuth exchange.
func (u *User) HasCalendarLinked() bool {
	return len(u.CalendarTokens) > 0
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
