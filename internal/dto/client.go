package dto

import "time"

// ListClientsRequest carries client listing query parameters.
type ListClientsRequest struct {
	Limit  int `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// UpdateClientRequest modifies mutable client details (admin only). The phone
// number is immutable; it doubles as the merchant code.
type UpdateClientRequest struct {
	FirstName string `json:"firstName" binding:"omitempty,max=100"`
	LastName  string `json:"lastName" binding:"omitempty,max=100"`
	Address   string `json:"address" binding:"omitempty,max=255"`
}

// ClientResponse is the API representation of a client.
type ClientResponse struct {
	ClientID  string    `json:"clientID"`
	UserID    string    `json:"userID"`
	Phone     string    `json:"phone"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
