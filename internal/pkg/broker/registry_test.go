package broker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"invtrack/internal/pkg/broker"
	"invtrack/internal/pkg/logger"
)

// fakeProducer registra chamadas para verificar o comportamento do Registry.
type fakeProducer struct {
	topic        string
	connectCalls int32
	produced     int32
	disconnected int32
	connectErr   error
}

func (p *fakeProducer) Connect(ctx context.Context) error {
	atomic.AddInt32(&p.connectCalls, 1)
	if p.connectErr != nil {
		return p.connectErr
	}
	return nil
}

func (p *fakeProducer) Produce(ctx context.Context, value []byte) error {
	atomic.AddInt32(&p.produced, 1)
	return nil
}

func (p *fakeProducer) Disconnect() {
	atomic.AddInt32(&p.disconnected, 1)
}

// TestRegistry_ConcurrentPublishCreatesSingleProducer testa que publicações
// concorrentes num tópico ainda não conectado não duplicam produtores:
// o primeiro chamador cria e conecta, os demais reutilizam.
func TestRegistry_ConcurrentPublishCreatesSingleProducer(t *testing.T) {
	var created int32
	var producer fakeProducer

	factory := func(topic string) broker.Producer {
		atomic.AddInt32(&created, 1)
		producer.topic = topic
		return &producer
	}

	registry := broker.NewRegistry(context.Background(), factory, logger.NewLogger("error"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := registry.Publish(context.Background(), "stock-low", []byte(`{"availability":1}`))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	assert.Equal(t, int32(1), atomic.LoadInt32(&producer.connectCalls))
	assert.Equal(t, int32(20), atomic.LoadInt32(&producer.produced))
}

// TestRegistry_OneProducerPerTopic testa o cache por tópico.
func TestRegistry_OneProducerPerTopic(t *testing.T) {
	producers := make(map[string]*fakeProducer)
	var mu sync.Mutex

	factory := func(topic string) broker.Producer {
		mu.Lock()
		defer mu.Unlock()
		p := &fakeProducer{topic: topic}
		producers[topic] = p
		return p
	}

	registry := broker.NewRegistry(context.Background(), factory, logger.NewLogger("error"))

	assert.NoError(t, registry.Publish(context.Background(), "topic-a", []byte("a")))
	assert.NoError(t, registry.Publish(context.Background(), "topic-a", []byte("a")))
	assert.NoError(t, registry.Publish(context.Background(), "topic-b", []byte("b")))

	assert.Len(t, producers, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&producers["topic-a"].produced))
	assert.Equal(t, int32(1), atomic.LoadInt32(&producers["topic-b"].produced))
}

// TestRegistry_ConnectFailureIsNotCached testa que um produtor que não
// conectou não entra no cache (a próxima publicação tenta de novo).
func TestRegistry_ConnectFailureIsNotCached(t *testing.T) {
	attempt := 0
	factory := func(topic string) broker.Producer {
		attempt++
		if attempt == 1 {
			return &fakeProducer{topic: topic, connectErr: context.Canceled}
		}
		return &fakeProducer{topic: topic}
	}

	registry := broker.NewRegistry(context.Background(), factory, logger.NewLogger("error"))

	err := registry.Publish(context.Background(), "stock-low", []byte("x"))
	assert.Error(t, err)

	err = registry.Publish(context.Background(), "stock-low", []byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, 2, attempt)
}

// TestRegistry_ShutdownDisconnectsAllProducers testa o encerramento gracioso.
func TestRegistry_ShutdownDisconnectsAllProducers(t *testing.T) {
	producers := []*fakeProducer{}
	factory := func(topic string) broker.Producer {
		p := &fakeProducer{topic: topic}
		producers = append(producers, p)
		return p
	}

	registry := broker.NewRegistry(context.Background(), factory, logger.NewLogger("error"))

	assert.NoError(t, registry.Publish(context.Background(), "topic-a", []byte("a")))
	assert.NoError(t, registry.Publish(context.Background(), "topic-b", []byte("b")))

	registry.Shutdown()

	for _, p := range producers {
		assert.Equal(t, int32(1), atomic.LoadInt32(&p.disconnected))
	}
}

// TestKafkaProducer_ConnectRespeitaCancelamento testa que o laço de reconexão
// do produtor real é interrompido pelo cancelamento do contexto de shutdown,
// em vez de retentar para sempre.
func TestKafkaProducer_ConnectRespeitaCancelamento(t *testing.T) {
	// Endereço inalcançável: o dial falha e o laço entraria no backoff.
	producer := broker.NewKafkaProducer("stock-low", "127.0.0.1:1", "test-client", logger.NewLogger("error"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := producer.Connect(ctx)

	assert.Error(t, err)
	// Deve retornar pelo cancelamento, bem antes de um segundo ciclo de backoff (5s)
	assert.Less(t, time.Since(start), 3*time.Second)
}
