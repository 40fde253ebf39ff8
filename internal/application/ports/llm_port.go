package ports

import "context"

// PolicyExtractor define el puerto de salida hacia el servicio de IA que lee una póliza en PDF.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz.
//
// La respuesta es un mapa parcial y NO confiable: cualquier campo puede faltar, venir
// nulo o con el tipo equivocado. El caso de uso la valida antes de usarla.
// Campos esperados: policy_number, insurer_name, start_date, end_date, currency,
// payment_method, premium_net, policy_fee, surcharge_amount, vat_amount, premium_total.
type PolicyExtractor interface {
	ExtractPolicyFields(ctx context.Context, pdf []byte) (map[string]any, error)
}
