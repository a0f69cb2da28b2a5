package domain

import "time"

// User is the durable identity behind an email address. PK: email.
type User struct {
	UserID      string     `json:"id" dynamodbav:"user_id"`
	Email       string     `json:"email" dynamodbav:"email"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	LastLoginAt *time.Time `json:"last_login,omitempty" dynamodbav:"last_login_at,omitempty"`
}
