package dto

import "time"

// RegisterRequest alta de un usuario de la agencia (solo admin).
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // mínimo 8 caracteres
	Name     string `json:"name"`
	Role     string `json:"role"` // admin | agente; vacío = agente
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT más el usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
