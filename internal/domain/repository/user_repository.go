package repository

import (
	"context"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByEmail devuelve domain.ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
