package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// systemPrompt instrui o modelo a devolver só o JSON com os campos do
// comprovante. O contrato de campos é o mesmo consumido pelo bet-service.
const systemPrompt = `Sei un esperto nell'analisi di scommesse sportive. Analizza l'immagine e estrai i seguenti dati in formato JSON:
{
  "sport": "nome dello sport",
  "event": "descrizione dell'evento/partita",
  "bookmaker": "nome del bookmaker",
  "odds": "quota decimale (es: 2.50)",
  "stake": "importo puntato in euro",
  "adm_ref": "codice di riferimento ADM se presente",
  "confidence_score": "punteggio di confidenza da 1 a 100"
}

Se non riesci a identificare un campo, usa null. Rispondi SOLO con il JSON, senza testo aggiuntivo.`

const userPrompt = "Analizza questa immagine di scommessa e estrai i dati richiesti."

// Extraction são os campos extraídos de um comprovante de aposta.
// Campos não identificados pelo modelo ficam nil; confidence default 50.
type Extraction struct {
	Sport      *string  `json:"sport"`
	Event      *string  `json:"event"`
	Bookmaker  *string  `json:"bookmaker"`
	Odds       *float64 `json:"odds"`
	Stake      *float64 `json:"stake"`
	AdmRef     *string  `json:"adm_ref"`
	Confidence int      `json:"confidence_score"`
}

// Client chama uma API de chat-completions compatível com OpenAI com
// suporte a visão. BaseURL aponta para o provedor real ou para o
// vision-simulator em desenvolvimento.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract envia a imagem para o modelo de visão e interpreta a resposta
func (c *Client) Extract(ctx context.Context, imageURL string) (Extraction, error) {
	body, _ := json.Marshal(map[string]any{
		"model": c.Model,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": userPrompt},
				{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
			}},
		},
		"max_tokens":  500,
		"temperature": 0.1,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Extraction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Extraction{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Extraction{}, fmt.Errorf("vision api http %s", resp.Status)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Extraction{}, err
	}
	if len(out.Choices) == 0 {
		return Extraction{}, errors.New("vision api: empty choices")
	}
	return ParseContent(out.Choices[0].Message.Content)
}
