package stockservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invtrack/config"
	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
	"invtrack/internal/service/stockservice"
)

// fakeStockRepo é uma implementação em memória de domain.StockRepository.
// O mutex segura a "linha" durante a transação inteira, reproduzindo a
// serialização que o FOR UPDATE dá no PostgreSQL.
type fakeStockRepo struct {
	mu     sync.Mutex
	stocks map[string]domain.Stock
	writes int // escritas duráveis commitadas
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[string]domain.Stock)}
}

func key(productID, warehouseID string) string {
	return productID + ":" + warehouseID
}

func (r *fakeStockRepo) seed(stock domain.Stock) {
	r.stocks[key(stock.ProductID, stock.WarehouseID)] = stock
}

func (r *fakeStockRepo) FindOne(ctx context.Context, productID, warehouseID string) (domain.Stock, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := r.stocks[key(productID, warehouseID)]
	return stock, ok, nil
}

func (r *fakeStockRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.StockTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &fakeTx{repo: r, staged: make(map[string]int)}
	if err := fn(ctx, tx); err != nil {
		// rollback: descarta as escritas pendentes
		return err
	}

	// commit: aplica as escritas pendentes
	for k, availability := range tx.staged {
		stock := r.stocks[k]
		stock.Availability = availability
		stock.UpdatedAt = time.Now()
		r.stocks[k] = stock
		r.writes++
	}
	return nil
}

type fakeTx struct {
	repo   *fakeStockRepo
	staged map[string]int
}

func (t *fakeTx) FindOneForUpdate(ctx context.Context, productID, warehouseID string) (domain.Stock, bool, error) {
	stock, ok := t.repo.stocks[key(productID, warehouseID)]
	return stock, ok, nil
}

func (t *fakeTx) UpdateAvailability(ctx context.Context, productID, warehouseID string, newAvailability int) error {
	t.staged[key(productID, warehouseID)] = newAvailability
	return nil
}

// failingRepo devolve erro de infraestrutura na transação.
type failingRepo struct {
	fakeStockRepo
	err error
}

func (r *failingRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.StockTx) error) error {
	return r.err
}

// MockNotifier é uma implementação mock da interface domain.NotificationService.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) DispatchSync(ctx context.Context, payload domain.AvailabilityPayload) bool {
	args := m.Called(ctx, payload)
	return args.Bool(0)
}

func (m *MockNotifier) DispatchAsync(ctx context.Context, payload domain.AvailabilityPayload) (bool, error) {
	args := m.Called(ctx, payload)
	return args.Bool(0), args.Error(1)
}

func testConfig(mode string) *config.Config {
	return &config.Config{
		MaxProductCount:  10,
		NotificationMode: mode,
	}
}

// TestDecrement_Fulfilled testa a baixa integral com notificação assíncrona após o commit.
func TestDecrement_Fulfilled(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ID: uuid.New().String(), ProductID: productID, WarehouseID: warehouseID, Availability: 50})

	notifier.On("DispatchAsync", mock.Anything, domain.AvailabilityPayload{Availability: 45, ProductID: productID}).
		Return(true, nil)

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	outcome, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ProductCount: 5,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DecrementFulfilled, outcome.Status)
	assert.Equal(t, 45, outcome.Availability)

	// Exatamente uma escrita durável
	assert.Equal(t, 1, repo.writes)
	stored, _, _ := repo.FindOne(context.Background(), productID, warehouseID)
	assert.Equal(t, 45, stored.Availability)
	notifier.AssertExpectations(t)
}

// TestDecrement_PartiallyAvailable testa que quantidade maior que o estoque
// não muta o registro e devolve a disponibilidade atual.
func TestDecrement_PartiallyAvailable(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ProductID: productID, WarehouseID: warehouseID, Availability: 3})

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	outcome, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ProductCount: 5,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DecrementPartiallyAvailable, outcome.Status)
	assert.Equal(t, 3, outcome.Availability)

	// Zero escritas: registro idêntico ao estado anterior
	assert.Equal(t, 0, repo.writes)
	stored, _, _ := repo.FindOne(context.Background(), productID, warehouseID)
	assert.Equal(t, 3, stored.Availability)
	notifier.AssertNotCalled(t, "DispatchAsync", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "DispatchSync", mock.Anything, mock.Anything)
}

// TestDecrement_OutOfStock testa que disponibilidade zero rejeita a baixa sem escrita.
func TestDecrement_OutOfStock(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ProductID: productID, WarehouseID: warehouseID, Availability: 0})

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	outcome, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ProductCount: 1,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DecrementOutOfStock, outcome.Status)
	assert.Equal(t, 0, repo.writes)
	notifier.AssertNotCalled(t, "DispatchAsync", mock.Anything, mock.Anything)
}

// TestDecrement_NotFound testa a baixa sobre uma chave inexistente.
func TestDecrement_NotFound(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	outcome, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    uuid.New().String(),
		WarehouseID:  uuid.New().String(),
		ProductCount: 1,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DecrementNotFound, outcome.Status)
	assert.Equal(t, 0, repo.writes)
}

// TestDecrement_InvalidProductCount testa os limites da quantidade por chamada.
func TestDecrement_InvalidProductCount(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	for _, count := range []int{0, -1, 11} {
		_, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
			ProductID:    uuid.New().String(),
			WarehouseID:  uuid.New().String(),
			ProductCount: count,
		})

		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}

	assert.Equal(t, 0, repo.writes)
}

// TestDecrement_Concurrent_NoLostUpdates simula 50 baixas concorrentes de 1
// unidade contra disponibilidade 50: o estado final deve ser exatamente 0,
// sem nenhuma baixa dupla ou perdida.
func TestDecrement_Concurrent_NoLostUpdates(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ProductID: productID, WarehouseID: warehouseID, Availability: 50})

	notifier.On("DispatchAsync", mock.Anything, mock.Anything).Return(true, nil)

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	var wg sync.WaitGroup
	var mu sync.Mutex
	fulfilled := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
				ProductID:    productID,
				WarehouseID:  warehouseID,
				ProductCount: 1,
			})
			assert.NoError(t, err)
			if outcome.Status == domain.DecrementFulfilled {
				mu.Lock()
				fulfilled++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, fulfilled)
	assert.Equal(t, 50, repo.writes)
	stored, _, _ := repo.FindOne(context.Background(), productID, warehouseID)
	assert.Equal(t, 0, stored.Availability)
}

// TestDecrement_SyncModeSwallowsNotificationFailure testa que a falha do
// webhook síncrono nunca afeta o sucesso da baixa.
func TestDecrement_SyncModeSwallowsNotificationFailure(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ProductID: productID, WarehouseID: warehouseID, Availability: 10})

	notifier.On("DispatchSync", mock.Anything, mock.Anything).Return(false)

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeSync), mockLogger)

	outcome, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ProductCount: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.DecrementFulfilled, outcome.Status)
	assert.Equal(t, 8, outcome.Availability)
	notifier.AssertExpectations(t)
}

// TestDecrement_AsyncDispatchFailurePropagates testa que a falha de publicação
// é propagada mesmo com a baixa já commitada.
func TestDecrement_AsyncDispatchFailurePropagates(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ProductID: productID, WarehouseID: warehouseID, Availability: 10})

	notifier.On("DispatchAsync", mock.Anything, mock.Anything).
		Return(false, errors.New("broker indisponível"))

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	_, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ProductCount: 2,
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)

	// A baixa permanece durável
	stored, _, _ := repo.FindOne(context.Background(), productID, warehouseID)
	assert.Equal(t, 8, stored.Availability)
}

// TestDecrement_InfraErrorPropagatesUnmodified testa que erros do repositório
// não são engolidos nem retraduzidos.
func TestDecrement_InfraErrorPropagatesUnmodified(t *testing.T) {
	repoErr := apperror.NewDBError("Falha ao commitar transação", errors.New("conexão perdida"))
	repo := &failingRepo{err: repoErr}
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	_, err := svc.Decrement(context.Background(), domain.UpdateStockRequest{
		ProductID:    uuid.New().String(),
		WarehouseID:  uuid.New().String(),
		ProductCount: 1,
	})

	assert.Equal(t, repoErr, err)
	notifier.AssertNotCalled(t, "DispatchAsync", mock.Anything, mock.Anything)
}

// TestGetStock testa a leitura pontual e o caso não encontrado.
func TestGetStock(t *testing.T) {
	repo := newFakeStockRepo()
	notifier := new(MockNotifier)
	mockLogger := logger.NewLogger("error")

	productID := uuid.New().String()
	warehouseID := uuid.New().String()
	repo.seed(domain.Stock{ProductID: productID, WarehouseID: warehouseID, Availability: 7})

	svc := stockservice.NewService(repo, notifier, testConfig(config.NotificationModeAsync), mockLogger)

	stock, err := svc.GetStock(context.Background(), productID, warehouseID)
	assert.NoError(t, err)
	assert.Equal(t, 7, stock.Availability)

	_, err = svc.GetStock(context.Background(), uuid.New().String(), warehouseID)
	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}
