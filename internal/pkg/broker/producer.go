package broker

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"

	"invtrack/internal/pkg/logger"
)

// connectBackoff é o intervalo fixo entre tentativas de conexão ao broker.
const connectBackoff = 5 * time.Second

// Producer é o contrato de um publicador ligado a um único tópico.
type Producer interface {
	// Connect bloqueia até conseguir alcançar o broker ou até o contexto ser
	// cancelado no shutdown. Nunca "desiste" por conta própria.
	Connect(ctx context.Context) error
	// Produce publica uma mensagem no tópico. Falhas são logadas e propagadas;
	// a retentativa de publicação é decisão do chamador, não do produtor.
	Produce(ctx context.Context, value []byte) error
	// Disconnect fecha a conexão de forma graciosa, engolindo erros.
	Disconnect()
}

// KafkaProducer é a implementação concreta de Producer sobre segmentio/kafka-go.
type KafkaProducer struct {
	topic    string
	broker   string
	clientID string
	writer   *kafka.Writer
	logger   logger.Logger
}

// NewKafkaProducer cria um produtor para um tópico. A conexão é estabelecida
// separadamente via Connect (criação preguiçosa pelo Registry).
func NewKafkaProducer(topic, broker, clientID string, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &KafkaProducer{
		topic:    topic,
		broker:   broker,
		clientID: clientID,
		writer:   writer,
		logger:   log,
	}
}

// Connect tenta alcançar o broker; em falha, espera o backoff fixo e tenta de
// novo indefinidamente. O laço é limitado apenas pelo cancelamento do contexto
// de shutdown (nunca por profundidade de pilha).
func (p *KafkaProducer) Connect(ctx context.Context) error {
	dialer := &kafka.Dialer{
		Timeout:  10 * time.Second,
		ClientID: p.clientID,
	}

	backoff := retry.NewConstant(connectBackoff)
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := dialer.DialContext(ctx, "tcp", p.broker)
		if err != nil {
			p.logger.Error("Falha ao conectar ao broker Kafka. Retentando...", err)
			return retry.RetryableError(err)
		}
		conn.Close()

		p.logger.Info("Conectado ao broker Kafka.", map[string]interface{}{"topic": p.topic, "broker": p.broker})
		return nil
	})
}

// Produce publica uma mensagem no tópico do produtor.
func (p *KafkaProducer) Produce(ctx context.Context, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Value: value})
	if err != nil {
		p.logger.Error("Falha ao publicar mensagem no tópico "+p.topic, err)
		return err
	}

	p.logger.Debug("Mensagem publicada.", map[string]interface{}{"topic": p.topic})
	return nil
}

// Disconnect fecha o writer. Erros são apenas logados: usado no shutdown,
// quando já não há o que fazer com a falha.
func (p *KafkaProducer) Disconnect() {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Falha ao desconectar do broker Kafka.", err)
		return
	}
	p.logger.Info("Desconectado do broker Kafka.", map[string]interface{}{"topic": p.topic})
}
