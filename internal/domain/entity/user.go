package entity

import "time"

// Estados de User.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User usuario de la agencia (admin o agente).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt, nunca texto plano
	Name         string
	Role         string // admin, agente
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
