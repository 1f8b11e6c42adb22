package stock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"invtrack/internal/domain"
	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/logger"
)

// UpdateStockBody é o corpo esperado no PATCH de baixa de estoque.
// @Description Corpo da requisição de baixa de estoque.
type UpdateStockBody struct {
	WarehouseID  string `json:"warehouseId" example:"d99eda1d-93b2-4850-bec3-b9ed1b90cf14"`
	ProductCount int    `json:"productCount" example:"2"`
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service domain.StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc domain.StockService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// writeJSON envia uma resposta JSON com o status informado.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("Falha ao codificar JSON de resposta", err)
	}
}

// handleServiceError traduz um erro de serviço para a resposta padronizada.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	h.writeJSON(w, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// productIDFromPath extrai e valida o productId do caminho /v1/stock/{productId}.
func productIDFromPath(path string) (string, error) {
	productID := strings.TrimPrefix(path, "/v1/stock/")
	productID = strings.Trim(productID, "/")
	if _, err := uuid.Parse(productID); err != nil {
		return "", apperror.NewValidationError("productId deve ser um UUID válido.")
	}
	return productID, nil
}

// StockHandler despacha pela rota /v1/stock/{productId} conforme o método.
func (h *Handler) StockHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		h.UpdateStockHandler(w, r)
	case http.MethodGet:
		h.GetStockHandler(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// UpdateStockHandler lida com a requisição PATCH /v1/stock/{productId}.
// @Summary Baixa de estoque
// @Description Decrementa atomicamente a disponibilidade de um produto em um armazém em resposta a uma compra.
// @Tags stock
// @Accept json
// @Produce json
// @Param productId path string true "ID do Produto (UUID)"
// @Param body body UpdateStockBody true "Armazém e quantidade da compra"
// @Success 200 {object} domain.BaseResponse "Baixa efetivada"
// @Failure 400 {object} domain.BaseResponse "Sem disponibilidade ou disponibilidade parcial"
// @Failure 404 {object} domain.BaseResponse "Registro de estoque não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /v1/stock/{productId} [patch]
func (h *Handler) UpdateStockHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := productIDFromPath(r.URL.Path)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var body UpdateStockBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.handleServiceError(w, r, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	if _, err := uuid.Parse(body.WarehouseID); err != nil {
		h.handleServiceError(w, r, apperror.NewValidationError("warehouseId deve ser um UUID válido."))
		return
	}

	outcome, err := h.Service.Decrement(ctx, domain.UpdateStockRequest{
		ProductID:    productID,
		WarehouseID:  body.WarehouseID,
		ProductCount: body.ProductCount,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// Tradução do desfecho de negócio para o contrato de resposta.
	switch outcome.Status {
	case domain.DecrementFulfilled:
		h.writeJSON(w, http.StatusOK, domain.BaseResponse{
			Code:             http.StatusOK,
			Message:          "success",
			ProductStockData: &domain.StockData{Availability: outcome.Availability},
		})

	case domain.DecrementPartiallyAvailable:
		h.writeJSON(w, http.StatusBadRequest, domain.BaseResponse{
			Code:             http.StatusBadRequest,
			Message:          fmt.Sprintf("only %d left", outcome.Availability),
			ProductStockData: &domain.StockData{Availability: outcome.Availability},
		})

	case domain.DecrementOutOfStock:
		h.writeJSON(w, http.StatusBadRequest, domain.BaseResponse{
			Code:    http.StatusBadRequest,
			Message: "no availability",
		})

	case domain.DecrementNotFound:
		h.writeJSON(w, http.StatusNotFound, domain.BaseResponse{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("stock with productId %s and warehouseId: %s does not exist", productID, body.WarehouseID),
		})

	default:
		h.handleServiceError(w, r, apperror.NewInternalError("Desfecho de baixa desconhecido.", nil))
	}
}

// GetStockHandler lida com a requisição GET /v1/stock/{productId}?warehouseId=.
// @Summary Consulta de estoque
// @Description Busca o registro de disponibilidade de um produto em um armazém.
// @Tags stock
// @Produce json
// @Param productId path string true "ID do Produto (UUID)"
// @Param warehouseId query string true "ID do Armazém (UUID)"
// @Success 200 {object} domain.Stock "Registro de estoque"
// @Failure 404 {object} domain.ErrorResponse "Registro de estoque não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/stock/{productId} [get]
func (h *Handler) GetStockHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := productIDFromPath(r.URL.Path)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	warehouseID := r.URL.Query().Get("warehouseId")
	if _, err := uuid.Parse(warehouseID); err != nil {
		h.handleServiceError(w, r, apperror.NewValidationError("warehouseId deve ser um UUID válido."))
		return
	}

	stock, err := h.Service.GetStock(ctx, productID, warehouseID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stock)
}
