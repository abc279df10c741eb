package model

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus enumerates the triage states of a contact message.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// ContactMessage is an enquiry submitted through the public contact form.
type ContactMessage struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	Reply     string        `json:"reply,omitempty"`
	RepliedAt *time.Time    `json:"replied_at,omitempty"`
	RepliedBy *uuid.UUID    `json:"replied_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=120"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Phone   string `json:"phone" binding:"omitempty,max=30"`
	Subject string `json:"subject" binding:"required,min=3,max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// ContactReplyRequest is the admin payload for answering an enquiry.
type ContactReplyRequest struct {
	Body string `json:"body" binding:"required,min=2,max=10000"`
}
