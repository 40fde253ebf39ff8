package ai

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// maxResponseBytes límite de lectura del cuerpo de respuesta.
const maxResponseBytes = 256 * 1024

// policyPrompt instrucciones para leer una póliza de seguros mexicana.
const policyPrompt = `Eres un analista de una agencia de seguros en México. Lee la póliza adjunta en PDF.
Devuelve ÚNICAMENTE un objeto JSON válido (sin markdown, sin bloques de código` + " ```json" + `) con esta estructura exacta:
{
  "policy_number": "<número de póliza>",
  "insurer_name": "<nombre de la aseguradora>",
  "start_date": "<inicio de vigencia, YYYY-MM-DD>",
  "end_date": "<fin de vigencia, YYYY-MM-DD>",
  "currency": "<MXN, USD o EUR>",
  "payment_method": "<Contado, Anual, Semestral, Trimestral, Mensual o Domiciliado>",
  "premium_net": <número>,
  "policy_fee": <número, derecho de póliza>,
  "surcharge_amount": <número, recargo por pago fraccionado>,
  "vat_amount": <número, IVA>,
  "premium_total": <número, prima total>
}

Reglas:
- Montos como número, sin símbolo de moneda ni separador de miles.
- Fechas siempre en formato YYYY-MM-DD.
- Si un dato no aparece en el documento usa null. No inventes valores.
- No incluyas texto fuera del JSON. Solo el objeto JSON.`

// jsonBlockRe extrae el primer objeto JSON del texto aunque el modelo lo envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON extrae el objeto JSON de un texto libre.
//  1. Elimina bloques de código markdown (```json … ``` o ``` … ```).
//  2. Si aún hay texto alrededor, captura el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}

// decodeFields convierte el texto del modelo en el mapa de campos. Los números se
// conservan como json.Number para no perder centavos en el paso por float64.
func decodeFields(text string) (map[string]any, error) {
	clean := extractJSON(text)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de la póliza: %w (JSON extraído: %s)", err, truncate(clean, 200))
	}
	if fields == nil {
		return nil, fmt.Errorf("AI: el modelo devolvió null")
	}
	return fields, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
