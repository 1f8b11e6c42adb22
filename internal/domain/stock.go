package domain

import (
	"context"
	"time"
)

// Stock representa o registro de disponibilidade de um produto em um armazém.
// A chave composta (ProductID, WarehouseID) é única; o registro é criado por
// um processo de provisionamento externo e nunca é deletado por este serviço.
type Stock struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	WarehouseID  string    `json:"warehouse_id"`
	Availability int       `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateStockRequest é o payload esperado para a requisição de baixa de estoque.
// ProductCount é a quantidade que o cliente deseja comprar (1 até o máximo configurado).
type UpdateStockRequest struct {
	ProductID    string `json:"product_id"`
	WarehouseID  string `json:"warehouse_id"`
	ProductCount int    `json:"product_count"`
}

// DecrementStatus enumera os desfechos possíveis de uma baixa de estoque.
type DecrementStatus int

const (
	// DecrementFulfilled indica que a baixa foi commitada integralmente.
	DecrementFulfilled DecrementStatus = iota
	// DecrementPartiallyAvailable indica que a quantidade pedida excede o
	// estoque atual; por política, nenhuma baixa parcial é realizada.
	DecrementPartiallyAvailable
	// DecrementOutOfStock indica disponibilidade igual ou menor que zero.
	DecrementOutOfStock
	// DecrementNotFound indica que não existe registro para a chave pedida.
	DecrementNotFound
)

// DecrementOutcome é o resultado tipado de uma baixa de estoque.
// Desfechos de regra de negócio NÃO são erros: o Handler os traduz para
// códigos de resposta. Availability carrega a nova disponibilidade quando
// Fulfilled, ou a disponibilidade atual (intocada) quando PartiallyAvailable.
type DecrementOutcome struct {
	Status       DecrementStatus
	Availability int
}

// --- Interfaces de Contrato (O CORAÇÃO DA ARQUITETURA LIMPA) ---

// StockTx expõe as operações de leitura/escrita válidas dentro de uma
// transação aberta pelo StockRepository.
type StockTx interface {
	// FindOneForUpdate busca o registro travando a linha (FOR UPDATE) até o
	// fim da transação, serializando baixas concorrentes na mesma chave.
	FindOneForUpdate(ctx context.Context, productID, warehouseID string) (Stock, bool, error)
	// UpdateAvailability grava a nova disponibilidade e o updated_at.
	UpdateAvailability(ctx context.Context, productID, warehouseID string, newAvailability int) error
}

// StockRepository é a interface que a camada de Repositório (Data Access)
// DEVE implementar. O Serviço de Estoque depende apenas deste contrato.
type StockRepository interface {
	// FindOne é a leitura pontual (fora de transação, pode ser servida por cache).
	FindOne(ctx context.Context, productID, warehouseID string) (Stock, bool, error)
	// WithTransaction abre uma transação isolada, executa fn e commita se fn
	// retornar nil; caso contrário faz rollback. O contexto entregue a fn
	// carrega o deadline da transação; a sessão subjacente é sempre liberada,
	// inclusive em timeout.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx StockTx) error) error
}

// StockService é a interface que a camada de Serviço (Business Logic) DEVE
// implementar. Define o que o Handler pode pedir.
type StockService interface {
	Decrement(ctx context.Context, req UpdateStockRequest) (DecrementOutcome, error)
	GetStock(ctx context.Context, productID, warehouseID string) (Stock, error)
}
