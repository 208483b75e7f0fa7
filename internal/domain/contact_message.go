package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContactMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Reference string    `db:"reference" json:"reference"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Setting struct {
	Key       string       `db:"key" json:"key"`
	Value     JSONDocument `db:"value" json:"value"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}
