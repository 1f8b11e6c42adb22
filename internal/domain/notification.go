package domain

import "context"

// Severity é o nível de criticidade derivado da disponibilidade restante.
// Ordenado do mais grave para o menos grave. Nunca é persistido.
type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// AvailabilityPayload é o dado de entrada de um disparo de notificação.
type AvailabilityPayload struct {
	Availability int    `json:"availability"`
	ProductID    string `json:"product_id"`
}

// NotificationMessage é o corpo publicado no tópico de notificações.
// A severidade é pré-computada pelo dispatcher e carregada no contrato de
// fio: o consumidor não a recomputa (decisão registrada no DESIGN.md).
type NotificationMessage struct {
	Availability int      `json:"availability"`
	ProductID    string   `json:"product_id"`
	Severity     Severity `json:"severity"`
}

// NotificationService é o contrato que o Serviço de Estoque espera do
// pipeline de notificação.
type NotificationService interface {
	// DispatchSync envia a notificação pelo webhook HTTP. NUNCA retorna erro:
	// falha de transporte vira false para não quebrar o fluxo de checkout.
	DispatchSync(ctx context.Context, payload AvailabilityPayload) bool
	// DispatchAsync publica no tópico durável. Falhas de publicação são
	// propagadas ao chamador.
	DispatchAsync(ctx context.Context, payload AvailabilityPayload) (bool, error)
}
