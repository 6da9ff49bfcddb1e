package domain

// Client is an account owner. Merchants are ordinary clients provisioned on
// first sight of their merchant code.
type Client struct {
	ClientID  string `json:"clientID"`
	UserID    string `json:"userID"` // FK -> users.user_id
	Phone     string `json:"phone"`  // Unique; merchant codes live in this column too
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address,omitempty"`
	AuditFields
}
