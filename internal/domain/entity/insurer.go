package entity

import "github.com/shopspring/decimal"

// Insurer aseguradora (compañía).
type Insurer struct {
	ID    string
	Name  string
	Alias string
}

// DisplayName alias si existe; si no, el nombre.
func (i *Insurer) DisplayName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

// InsurerPaymentRule configuración de recargos por pago fraccionado y derecho de póliza
// de una aseguradora. InsurerKey es el ID, alias o nombre normalizado con Fold.
type InsurerPaymentRule struct {
	InsurerKey        string
	SemestralPercent  decimal.Decimal
	TrimestralPercent decimal.Decimal
	MensualPercent    decimal.Decimal
	PolicyFeeOverride decimal.NullDecimal
}

// Client asegurado (solo los datos que consume cobranza).
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// PortfolioPolicy lectura de cartera: póliza con sus joins (cliente, aseguradora, ramo).
// Client o Insurer en nil significa que el join no trajo datos.
type PortfolioPolicy struct {
	Policy   Policy
	Client   *Client
	Insurer  *Insurer
	LineName string
}
