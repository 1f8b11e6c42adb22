package domain

// StockData carrega a disponibilidade retornada ao cliente.
type StockData struct {
	Availability int `json:"availability" example:"100"`
}

// BaseResponse é o envelope padrão de resposta da API de estoque.
// @Description Envelope padrão de resposta da API de Inventory Tracking.
type BaseResponse struct {
	Code             int        `json:"code" example:"200"`
	Message          string     `json:"message" example:"success"`
	ProductStockData *StockData `json:"productStockData,omitempty"`
}

// ErrorResponse é a estrutura padronizada para respostas de erro na API.
// @Description Estrutura padronizada para respostas de erro na API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"productCount deve estar entre 1 e 10."`
}
