package models

// User represents a user account in the system.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRow is the caller-facing shape of a user returned by list operations.
type UserRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Row converts the stored user into its caller-facing form.
func (u User) Row() UserRow {
	return UserRow{ID: u.ID, Name: u.Name, Email: u.Email}
}
