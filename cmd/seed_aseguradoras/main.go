// seed_aseguradoras genera el script SQL de reglas de cobro por aseguradora
// (recargo por pago fraccionado y derecho de póliza fijo) a partir de un CSV.
//
// Uso: go run ./cmd/seed_aseguradoras [ruta/aseguradoras.csv]
// Columnas: clave;semestral;trimestral;mensual;derecho_poliza (derecho vacío = sin derecho fijo).
// El CSV suele salir de Excel en Latin-1; si no es UTF-8 válido se decodifica como ISO-8859-1.
// Escribe: migrations/002_seed_insurer_rules.sql
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

type rule struct {
	key                            string
	semestral, trimestral, mensual decimal.Decimal
	fee                            *decimal.Decimal
}

func main() {
	csvPath := "aseguradoras.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	rules, err := parseRules(decodeLatin1(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "migrations", "002_seed_insurer_rules.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	writeSQL(out, rules)
	fmt.Printf("Generado %s: %d aseguradoras\n", outPath, len(rules))
}

// decodeLatin1 devuelve el contenido como UTF-8.
func decodeLatin1(b []byte) io.Reader {
	if utf8.Valid(b) {
		return bytes.NewReader(b)
	}
	return transform.NewReader(bytes.NewReader(b), charmap.ISO8859_1.NewDecoder())
}

func parseRules(r io.Reader) ([]rule, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]rule)
	for i, rec := range records {
		if len(rec) < 4 {
			continue
		}
		key := entity.Fold(rec[0])
		if key == "" || (i == 0 && key == "clave") {
			continue
		}
		ru := rule{
			key:        key,
			semestral:  money.Parse(rec[1]),
			trimestral: money.Parse(rec[2]),
			mensual:    money.Parse(rec[3]),
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			fee := money.Round(money.Parse(rec[4]))
			ru.fee = &fee
		}
		byKey[key] = ru
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]rule, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out, nil
}

func writeSQL(w io.Writer, rules []rule) {
	fmt.Fprintln(w, "-- Reglas de cobro por aseguradora")
	fmt.Fprintln(w, "-- Generado por cmd/seed_aseguradoras")
	fmt.Fprintln(w)
	if len(rules) == 0 {
		return
	}
	fmt.Fprintln(w, "INSERT INTO insurer_payment_rules (insurer_key, semestral_percent, trimestral_percent, mensual_percent, policy_fee_override) VALUES")
	for i, r := range rules {
		fee := "NULL"
		if r.fee != nil {
			fee = r.fee.StringFixed(money.Places)
		}
		sep := ","
		if i == len(rules)-1 {
			sep = ""
		}
		fmt.Fprintf(w, "  ('%s', %s, %s, %s, %s)%s\n",
			escapeSQL(r.key), r.semestral.String(), r.trimestral.String(), r.mensual.String(), fee, sep)
	}
	fmt.Fprintln(w, "ON CONFLICT (insurer_key) DO UPDATE SET")
	fmt.Fprintln(w, "  semestral_percent = EXCLUDED.semestral_percent,")
	fmt.Fprintln(w, "  trimestral_percent = EXCLUDED.trimestral_percent,")
	fmt.Fprintln(w, "  mensual_percent = EXCLUDED.mensual_percent,")
	fmt.Fprintln(w, "  policy_fee_override = EXCLUDED.policy_fee_override,")
	fmt.Fprintln(w, "  updated_at = now();")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
