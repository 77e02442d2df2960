package contact

import "time"

// Submission is a stored contact-form entry. It is never updated once stored.
type Submission struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Input carries the raw form fields posted by a visitor.
type Input struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Subject     string  `json:"subject"`
	Message     string  `json:"message"`
	TypeTheWord string  `json:"type_the_word"`
}
