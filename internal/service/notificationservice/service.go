package notificationservice

import (
	"context"
	"encoding/json"
	"net/http"

	"invtrack/config"
	"invtrack/internal/domain"
	"invtrack/internal/pkg/broker"
	"invtrack/internal/pkg/httpclient"
	"invtrack/internal/pkg/logger"
)

// Service implementa a interface domain.NotificationService: classifica a
// disponibilidade em uma severidade e despacha o sinal de estoque baixo pelo
// canal síncrono (webhook) ou assíncrono (tópico Kafka).
type Service struct {
	webhookURL string
	topic      string
	thresholds config.Thresholds

	requester httpclient.Requester
	publisher broker.Publisher
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Notificação.
func NewService(cfg *config.Config, requester httpclient.Requester, publisher broker.Publisher, log logger.Logger) *Service {
	return &Service{
		webhookURL: cfg.NotificationWebhookURL,
		topic:      cfg.KafkaTopic,
		thresholds: cfg.NotificationThresholds,
		requester:  requester,
		publisher:  publisher,
		logger:     log,
	}
}

// Classify mapeia a disponibilidade para uma severidade. Avaliação ordenada,
// primeiro match vence. Com os limiares validados na configuração
// (medium >= low), o fallthrough final é inalcançável; ele devolve LOW (sem
// sinal acionável) para o tipo de retorno ser total.
func (s *Service) Classify(availability int) domain.Severity {
	t := s.thresholds

	switch {
	case availability <= t.Blocker:
		return domain.SeverityBlocker
	case availability <= t.Critical:
		return domain.SeverityCritical
	case availability <= t.Medium:
		return domain.SeverityMedium
	case availability >= t.Low:
		return domain.SeverityLow
	}

	return domain.SeverityLow
}

// DispatchSync classifica e envia a notificação pelo webhook HTTP.
// Severidade LOW não gera chamada alguma (sem sinal acionável). Qualquer
// falha de transporte vira false: este caminho NUNCA devolve erro, para a
// indisponibilidade do destino de notificação não quebrar o fluxo de checkout.
func (s *Service) DispatchSync(ctx context.Context, payload domain.AvailabilityPayload) bool {
	severity := s.Classify(payload.Availability)
	if severity == domain.SeverityLow {
		return true
	}

	requestPayload := httpclient.RequestPayload{
		URL:    s.webhookURL,
		Method: http.MethodPost,
		Data: domain.NotificationMessage{
			Availability: payload.Availability,
			ProductID:    payload.ProductID,
			Severity:     severity,
		},
	}

	response, err := s.requester.Request(ctx, requestPayload)
	if err != nil {
		s.logger.Warn("Falha no envio síncrono da notificação. Fluxo do chamador preservado.", map[string]interface{}{
			"product_id": payload.ProductID,
			"severity":   string(severity),
			"error":      err.Error(),
		})
		return false
	}

	return response.Status == http.StatusOK
}

// DispatchAsync classifica e publica a notificação no tópico durável.
// Severidade LOW não publica nada. A severidade vai pré-computada no corpo da
// mensagem (o consumidor não recomputa). Falhas de publicação são propagadas:
// diferente do caminho síncrono, este pode falhar ruidosamente.
func (s *Service) DispatchAsync(ctx context.Context, payload domain.AvailabilityPayload) (bool, error) {
	severity := s.Classify(payload.Availability)
	if severity == domain.SeverityLow {
		return true, nil
	}

	message := domain.NotificationMessage{
		Availability: payload.Availability,
		ProductID:    payload.ProductID,
		Severity:     severity,
	}

	jsonBytes, err := json.Marshal(message)
	if err != nil {
		return false, err
	}

	if err := s.publisher.Publish(ctx, s.topic, jsonBytes); err != nil {
		s.logger.Error("Falha ao publicar notificação no tópico "+s.topic, err)
		return false, err
	}

	return true, nil
}
