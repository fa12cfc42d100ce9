package models

// Admin is the single operator account configured through the environment.
type Admin struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	Role         string `json:"role"`
}
