package stockrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"invtrack/internal/domain"
	"invtrack/internal/errors"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/logger"
)

// StockRepository implementa a interface domain.StockRepository sobre o
// PostgreSQL, com cache Redis para as leituras pontuais.
type StockRepository struct {
	DB            *sql.DB
	Cache         cache.Client
	DBTimeout     time.Duration
	StockCacheTTL time.Duration
	logger        logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *StockRepository {
	return &StockRepository{
		DB:            db,
		Cache:         cacheClient,
		DBTimeout:     dbTimeout,
		StockCacheTTL: cacheTTL,
		logger:        log,
	}
}

// cacheKey monta a chave de cache da leitura pontual de estoque.
func cacheKey(productID, warehouseID string) string {
	return fmt.Sprintf("stock:%s:%s", productID, warehouseID)
}

// FindOne busca o registro de estoque pela chave composta. A leitura pode ser
// servida pelo cache (TTL curto); a baixa de estoque NUNCA passa por aqui —
// ela lê dentro da transação, via FindOneForUpdate.
func (r *StockRepository) FindOne(ctx context.Context, productID, warehouseID string) (domain.Stock, bool, error) {
	key := cacheKey(productID, warehouseID)

	// 1. Tentativa de cache
	if cached, err := r.Cache.Get(ctx, key); err == nil {
		var stock domain.Stock
		if jsonErr := json.Unmarshal([]byte(cached), &stock); jsonErr == nil {
			r.logger.Debug("Estoque servido pelo cache.", map[string]interface{}{"product_id": productID, "warehouse_id": warehouseID})
			return stock, true, nil
		}
		// Entrada corrompida: remove e segue para o DB
		r.Cache.Delete(ctx, key)
	}

	// 2. Leitura no DB
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, product_id, warehouse_id, availability, created_at, updated_at
        FROM stock
        WHERE product_id = $1 AND warehouse_id = $2`

	var stock domain.Stock
	err := r.DB.QueryRowContext(ctxTimeout, query, productID, warehouseID).Scan(
		&stock.ID, &stock.ProductID, &stock.WarehouseID, &stock.Availability, &stock.CreatedAt, &stock.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Stock{}, false, nil
	}
	if err != nil {
		r.logger.Error("Falha ao buscar estoque no DB.", err)
		return domain.Stock{}, false, errors.NewDBError("Falha ao buscar estoque", err)
	}

	// 3. Popular o cache (best-effort)
	if jsonBytes, jsonErr := json.Marshal(stock); jsonErr == nil {
		r.Cache.Set(ctx, key, string(jsonBytes), r.StockCacheTTL)
	}

	return stock, true, nil
}

// WithTransaction abre uma transação isolada com deadline, executa fn e
// commita se fn retornar nil. Qualquer erro de fn provoca rollback e é
// propagado SEM modificação: o chamador decide como traduzi-lo.
func (r *StockRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.StockTx) error) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// BeginTx amarra a transação ao contexto: se o deadline estourar, o
	// database/sql faz rollback e devolve a sessão ao pool.
	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de estoque.", err)
		return errors.NewDBError("Falha ao iniciar transação", err)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(ctxTimeout, &stockTx{tx: tx, repo: r}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de estoque.", err)
		return errors.NewDBError("Falha ao commitar transação", err)
	}
	committed = true

	return nil
}

// stockTx implementa domain.StockTx sobre uma *sql.Tx aberta.
type stockTx struct {
	tx   *sql.Tx
	repo *StockRepository
}

// FindOneForUpdate busca o registro travando a linha (FOR UPDATE) até o fim da
// transação. Duas baixas concorrentes na mesma chave serializam aqui: a
// segunda só lê depois do commit (ou rollback) da primeira, o que elimina
// lost updates e estoque negativo.
func (t *stockTx) FindOneForUpdate(ctx context.Context, productID, warehouseID string) (domain.Stock, bool, error) {
	query := `
        SELECT id, product_id, warehouse_id, availability, created_at, updated_at
        FROM stock
        WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`

	var stock domain.Stock
	err := t.tx.QueryRowContext(ctx, query, productID, warehouseID).Scan(
		&stock.ID, &stock.ProductID, &stock.WarehouseID, &stock.Availability, &stock.CreatedAt, &stock.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Stock{}, false, nil
	}
	if err != nil {
		t.repo.logger.Error("Falha ao buscar estoque para baixa.", err)
		return domain.Stock{}, false, errors.NewDBError("Falha ao buscar estoque para baixa", err)
	}

	return stock, true, nil
}

// UpdateAvailability grava a nova disponibilidade dentro da transação e
// invalida a entrada de cache da chave. A invalidação é best-effort: o TTL
// curto do cache cobre a janela entre o DEL e o commit.
func (t *stockTx) UpdateAvailability(ctx context.Context, productID, warehouseID string, newAvailability int) error {
	query := `
        UPDATE stock
        SET availability = $1, updated_at = $2
        WHERE product_id = $3 AND warehouse_id = $4`

	result, err := t.tx.ExecContext(ctx, query, newAvailability, time.Now(), productID, warehouseID)
	if err != nil {
		t.repo.logger.Error("Falha ao atualizar disponibilidade.", err)
		return errors.NewDBError("Falha ao atualizar disponibilidade", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		// A linha estava travada pelo FOR UPDATE; sumir aqui indica deleção
		// concorrente fora deste serviço.
		return errors.NewConflictError("O registro de estoque desapareceu durante a transação.")
	}

	t.repo.Cache.Delete(ctx, cacheKey(productID, warehouseID))

	return nil
}
