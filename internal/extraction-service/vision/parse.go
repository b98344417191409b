package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const defaultConfidence = 50

// rawExtraction tolera os formatos que os modelos realmente devolvem:
// números podem vir como string ("2.50") e a confiança como float.
type rawExtraction struct {
	Sport      *string         `json:"sport"`
	Event      *string         `json:"event"`
	Bookmaker  *string         `json:"bookmaker"`
	Odds       json.RawMessage `json:"odds"`
	Stake      json.RawMessage `json:"stake"`
	AdmRef     *string         `json:"adm_ref"`
	Confidence json.RawMessage `json:"confidence_score"`
}

// ParseContent interpreta o texto devolvido pelo modelo. Remove cercas
// de código markdown quando presentes e normaliza os campos numéricos.
func ParseContent(content string) (Extraction, error) {
	content = stripFences(content)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Extraction{}, fmt.Errorf("parse vision response: %w", err)
	}

	out := Extraction{
		Sport:      cleanStr(raw.Sport),
		Event:      cleanStr(raw.Event),
		Bookmaker:  cleanStr(raw.Bookmaker),
		AdmRef:     cleanStr(raw.AdmRef),
		Odds:       parseFloat(raw.Odds),
		Stake:      parseFloat(raw.Stake),
		Confidence: defaultConfidence,
	}
	if f := parseFloat(raw.Confidence); f != nil {
		out.Confidence = int(*f)
	}
	return out, nil
}

// stripFences remove blocos ```json ... ``` do conteúdo
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// cleanStr descarta strings vazias ou o literal "null"
func cleanStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

// parseFloat aceita número JSON ou string numérica ("2.50", "€10")
func parseFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, "€$ "))
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
