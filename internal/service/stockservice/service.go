package stockservice

import (
	"context"
	"errors"
	"fmt"

	"invtrack/config"
	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// errAbort é o sentinela interno que força o rollback da transação quando a
// baixa é rejeitada por regra de negócio (sem mutação, sem erro para o chamador).
var errAbort = errors.New("baixa de estoque abortada sem mutação")

// Service implementa a interface domain.StockService: o motor de baixa de
// estoque. Ele não segura lock em processo algum — a serialização de baixas
// concorrentes na mesma chave é responsabilidade exclusiva da transação do
// repositório.
type Service struct {
	repo             domain.StockRepository
	notifier         domain.NotificationService
	maxProductCount  int
	notificationMode string
	logger           logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo domain.StockRepository, notifier domain.NotificationService, cfg *config.Config, log logger.Logger) *Service {
	return &Service{
		repo:             repo,
		notifier:         notifier,
		maxProductCount:  cfg.MaxProductCount,
		notificationMode: cfg.NotificationMode,
		logger:           log,
	}
}

// Decrement aplica a baixa de estoque para uma compra.
//
// Toda a decisão roda dentro da transação do repositório: leitura com lock de
// linha, validação de disponibilidade e escrita da nova disponibilidade.
// Exatamente uma escrita durável por chamada bem-sucedida; zero escritas nos
// desfechos NotFound/OutOfStock/PartiallyAvailable. A notificação é disparada
// somente DEPOIS do commit, refletindo apenas baixas efetivadas.
func (s *Service) Decrement(ctx context.Context, req domain.UpdateStockRequest) (domain.DecrementOutcome, error) {
	s.logger.Debug("Iniciando baixa de estoque.", map[string]interface{}{
		"product_id":    req.ProductID,
		"warehouse_id":  req.WarehouseID,
		"product_count": req.ProductCount,
	})

	// Validação de entrada: a quantidade por chamada é limitada pela configuração.
	if req.ProductCount < 1 || req.ProductCount > s.maxProductCount {
		return domain.DecrementOutcome{}, apperror.NewValidationError(
			fmt.Sprintf("productCount deve estar entre 1 e %d.", s.maxProductCount))
	}

	var outcome domain.DecrementOutcome

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx domain.StockTx) error {
		stock, found, err := tx.FindOneForUpdate(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			// Falha de infraestrutura: rollback e propagação sem modificação.
			return err
		}

		if !found {
			outcome = domain.DecrementOutcome{Status: domain.DecrementNotFound}
			return errAbort
		}

		if stock.Availability <= 0 {
			outcome = domain.DecrementOutcome{Status: domain.DecrementOutOfStock}
			return errAbort
		}

		if req.ProductCount > stock.Availability {
			// Política: sem baixa parcial. O contador fica intocado e o
			// chamador recebe a disponibilidade atual.
			outcome = domain.DecrementOutcome{
				Status:       domain.DecrementPartiallyAvailable,
				Availability: stock.Availability,
			}
			return errAbort
		}

		newAvailability := stock.Availability - req.ProductCount
		if err := tx.UpdateAvailability(ctx, req.ProductID, req.WarehouseID, newAvailability); err != nil {
			return err
		}

		outcome = domain.DecrementOutcome{
			Status:       domain.DecrementFulfilled,
			Availability: newAvailability,
		}
		return nil
	})

	if err != nil && !errors.Is(err, errAbort) {
		s.logger.Error("Falha na transação de baixa de estoque.", err)
		return domain.DecrementOutcome{}, err
	}

	if outcome.Status != domain.DecrementFulfilled {
		s.logger.Info("Baixa de estoque rejeitada por regra de negócio.", map[string]interface{}{
			"product_id":   req.ProductID,
			"warehouse_id": req.WarehouseID,
			"status":       int(outcome.Status),
		})
		return outcome, nil
	}

	// Baixa commitada: disparar o sinal de estoque baixo.
	if dispatchErr := s.dispatch(ctx, req.ProductID, outcome.Availability); dispatchErr != nil {
		// A baixa já está durável; o erro de publicação é propagado para o
		// chamador decidir a reconciliação (caminho assíncrono falha ruidosamente).
		return outcome, dispatchErr
	}

	s.logger.Info("Baixa de estoque efetivada.", map[string]interface{}{
		"product_id":       req.ProductID,
		"warehouse_id":     req.WarehouseID,
		"new_availability": outcome.Availability,
	})
	return outcome, nil
}

// dispatch envia a notificação pelo modo configurado. O caminho síncrono
// nunca retorna erro; o assíncrono propaga falhas de publicação.
func (s *Service) dispatch(ctx context.Context, productID string, availability int) error {
	payload := domain.AvailabilityPayload{
		Availability: availability,
		ProductID:    productID,
	}

	if s.notificationMode == config.NotificationModeSync {
		if ok := s.notifier.DispatchSync(ctx, payload); !ok {
			// Deliberadamente isolado: o sucesso da baixa não depende do
			// destino da notificação.
			s.logger.Warn("Notificação síncrona não entregue.", map[string]interface{}{"product_id": productID})
		}
		return nil
	}

	_, err := s.notifier.DispatchAsync(ctx, payload)
	if err != nil {
		return apperror.NewInternalError("Baixa efetivada, mas a publicação da notificação falhou.", err)
	}
	return nil
}

// GetStock busca o registro de estoque pela chave composta (leitura pontual,
// pode ser servida pelo cache do repositório).
func (s *Service) GetStock(ctx context.Context, productID, warehouseID string) (domain.Stock, error) {
	stock, found, err := s.repo.FindOne(ctx, productID, warehouseID)
	if err != nil {
		return domain.Stock{}, err
	}
	if !found {
		return domain.Stock{}, apperror.NewNotFoundError(
			fmt.Sprintf("Estoque com productId %s e warehouseId %s não existe.", productID, warehouseID))
	}

	return stock, nil
}
