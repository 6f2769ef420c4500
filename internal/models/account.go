package models

// Account is the shape the school data store returns for a user lookup.
// Only the fields the reset flow touches are mapped.
type Account struct {
	ID       string `json:"id"`
	UserName string `json:"UserName"`
}

// Student carries the contact email associated with an account.
type Student struct {
	ID     string `json:"id"`
	UserID string `json:"UserId"`
	Email  string `json:"email"`
}
