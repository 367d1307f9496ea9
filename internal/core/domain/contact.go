package domain

import (
	"net/mail"
	"strings"
)

// ContactRequest is what a visitor submits through the contact form
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactMessage is the payload relayed to the CMS contact endpoint
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks the request is complete
func (r ContactRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Message) == "" {
		return ErrInvalidInput
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return ErrInvalidInput
	}
	return nil
}

// ToMessage builds the relayed message, deriving the subject from the name
func (r ContactRequest) ToMessage() ContactMessage {
	name := strings.TrimSpace(r.Name)
	sender := name
	if sender == "" {
		sender = "Someone"
	}
	return ContactMessage{
		Name:    name,
		Email:   strings.TrimSpace(r.Email),
		Subject: "Website contact from " + sender,
		Message: r.Message,
	}
}
