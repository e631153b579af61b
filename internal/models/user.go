// Package models defines the user record persisted by every storage backend.
package models

import "time"

// CreatedAtLayout is the ISO-8601 layout of User.CreatedAt: local time,
// microsecond precision, no zone. Stored values are kept as strings so a
// load/save cycle reproduces them byte for byte.
const CreatedAtLayout = "2006-01-02T15:04:05.000000"

// User is one stored record. The JSON keys are the on-disk format.
type User struct {
	Name      string `json:"name"`
	Number    string `json:"number"`
	Password  string `json:"password"`
	CreatedAt string `json:"created_at"`
}

// UserView is the operator-facing projection of a User; it never carries the
// password digest.
type UserView struct {
	Name      string
	Number    string
	CreatedAt string
}

// View returns the operator-facing projection of u.
func (u User) View() UserView {
	return UserView{Name: u.Name, Number: u.Number, CreatedAt: u.CreatedAt}
}

// FormatCreatedAt renders t in CreatedAtLayout.
func FormatCreatedAt(t time.Time) string {
	return t.Format(CreatedAtLayout)
}

// Field selects the user attribute changed by an update.
type Field string

const (
	FieldName     Field = "name"
	FieldNumber   Field = "number"
	FieldPassword Field = "password"
)

// ParseField accepts the menu digits 1-3 or the field names. The second
// result is false for anything else.
func ParseField(s string) (Field, bool) {
	switch s {
	case "1", string(FieldName):
		return FieldName, true
	case "2", string(FieldNumber), "phone":
		return FieldNumber, true
	case "3", string(FieldPassword):
		return FieldPassword, true
	}
	return "", false
}
