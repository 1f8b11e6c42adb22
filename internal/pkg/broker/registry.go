package broker

import (
	"context"
	"sync"

	"invtrack/internal/pkg/logger"
)

// Publisher é o contrato que o pipeline de notificação espera do broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, value []byte) error
}

// ProducerFactory cria um Producer para um tópico. Injetada no Registry para
// permitir produtores falsos nos testes.
type ProducerFactory func(topic string) Producer

// Registry mantém um Producer por tópico, criado preguiçosamente na primeira
// publicação. É um objeto explícito com o ciclo de vida do processo, não um
// singleton de pacote; o mutex serializa a criação para que publicações
// concorrentes num tópico ainda não conectado não dupliquem conexões.
type Registry struct {
	mu        sync.Mutex
	producers map[string]Producer
	factory   ProducerFactory

	// connectCtx limita o laço de reconexão: é cancelado no shutdown do processo.
	connectCtx context.Context
	logger     logger.Logger
}

// NewRegistry cria o registro de produtores. connectCtx deve ser o contexto
// de vida do processo (cancelado no shutdown).
func NewRegistry(connectCtx context.Context, factory ProducerFactory, log logger.Logger) *Registry {
	return &Registry{
		producers:  make(map[string]Producer),
		factory:    factory,
		connectCtx: connectCtx,
		logger:     log,
	}
}

// Publish obtém (ou cria e conecta) o produtor do tópico e publica a mensagem.
// Falhas de publicação são propagadas ao chamador sem retentativa.
func (r *Registry) Publish(ctx context.Context, topic string, value []byte) error {
	producer, err := r.getProducer(topic)
	if err != nil {
		return err
	}

	return producer.Produce(ctx, value)
}

// getProducer devolve o produtor cacheado do tópico, criando e conectando um
// novo (sob o mutex: o primeiro chamador cria, os demais reutilizam).
func (r *Registry) getProducer(topic string) (Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if producer, ok := r.producers[topic]; ok {
		return producer, nil
	}

	r.logger.Info("Criando produtor para o tópico.", map[string]interface{}{"topic": topic})
	producer := r.factory(topic)

	// Connect bloqueia até o broker responder ou até o shutdown cancelar o
	// contexto. O produtor só entra no cache depois de conectado.
	if err := producer.Connect(r.connectCtx); err != nil {
		return nil, err
	}

	r.producers[topic] = producer
	return producer, nil
}

// Shutdown desconecta todos os produtores criados. Best-effort.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topic, producer := range r.producers {
		producer.Disconnect()
		delete(r.producers, topic)
	}
}
