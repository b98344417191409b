package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/smartstake/smartstake-core/internal/analytics-service/cache"
	"github.com/smartstake/smartstake-core/internal/analytics-service/ws"
	"github.com/smartstake/smartstake-core/pkg/contracts/events"
)

// Broadcaster publica a liquidação para o canal de broadcast (Redis Pub/Sub)
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome liquidações do Kafka, invalida o cache de resumo do
// usuário e repassa o evento para o feed WebSocket via Redis Pub/Sub.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log         *zap.Logger
	Reader      *kafka.Reader
	Cache       *cache.Cache
	Broadcaster Broadcaster
	Channel     string

	OnConsumed    func()       // métricas (counter++)
	OnInvalidated func()       // métricas
	OnBroadcast   func()       // métricas
	OnError       func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.BetSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// O resumo cacheado ficou obsoleto com a mudança de status
		if err := p.Cache.Invalidate(ctx, ev.UserID); err != nil {
			p.Log.Warn("redis invalidate failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// não bloqueia o broadcast se falhar a invalidação
		} else if p.OnInvalidated != nil {
			p.OnInvalidated() // callback de métrica: cache invalidado
		}

		payload, _ := json.Marshal(ws.SettlementUpdate{UserID: ev.UserID, Payload: ev})
		if err := p.Broadcaster.Publish(ctx, p.Channel, payload); err != nil {
			p.Log.Warn("redis publish failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("broadcast")
			}
			continue
		}
		if p.OnBroadcast != nil {
			p.OnBroadcast() // callback de métrica: broadcast concluído
		}
	}
}
