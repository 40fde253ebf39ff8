package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrMissingClient        = errors.New("la póliza no tiene cliente asociado")
	ErrMissingInsurer       = errors.New("la póliza no tiene aseguradora asociada")
	ErrInvalidDocument      = errors.New("documento inválido: solo se aceptan PDF")
	ErrExtractorUnavailable = errors.New("servicio de extracción IA no configurado")
)
