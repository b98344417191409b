package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// UserID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	UserID string `json:"userId"` // requerido em subscribe/unsubscribe
}

// SettlementUpdate representa uma liquidação de aposta enviada para
// os clientes WebSocket do usuário.
type SettlementUpdate struct {
	UserID  string      `json:"userId"`
	Payload interface{} `json:"payload"`
}
