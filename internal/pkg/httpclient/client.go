package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"syscall"
	"time"

	"invtrack/internal/pkg/logger"
)

// RequestPayload descreve uma requisição HTTP saliente (URL + método + corpo JSON).
type RequestPayload struct {
	URL    string
	Method string
	Data   interface{}
}

// Response carrega o status e o corpo da resposta do destino.
type Response struct {
	Status int
	Body   []byte
}

// Requester é o contrato que o pipeline de notificação espera do cliente HTTP.
type Requester interface {
	Request(ctx context.Context, payload RequestPayload) (Response, error)
}

// Client é a implementação concreta de Requester sobre net/http.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient cria o cliente HTTP usado para o webhook de notificação.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Request executa a requisição descrita pelo payload. Quando o transporte
// falha com erro de conexão resetada, uma única retentativa automática é
// aplicada antes de propagar o erro.
func (c *Client) Request(ctx context.Context, payload RequestPayload) (Response, error) {
	resp, err := c.do(ctx, payload)
	if err == nil {
		return resp, nil
	}

	if isConnReset(err) {
		c.logger.Warn("Conexão resetada pelo destino da notificação. Retentando uma vez.", map[string]interface{}{"url": payload.URL})
		return c.do(ctx, payload)
	}

	c.logger.Error("Falha na requisição HTTP saliente.", err)
	return Response{}, err
}

// do monta e executa uma única tentativa.
func (c *Client) do(ctx context.Context, payload RequestPayload) (Response, error) {
	var body io.Reader
	if payload.Data != nil {
		jsonBytes, err := json.Marshal(payload.Data)
		if err != nil {
			return Response{}, err
		}
		body = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, payload.Method, payload.URL, body)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	return Response{Status: resp.StatusCode, Body: respBody}, nil
}

// isConnReset verifica se o erro de transporte é do tipo "connection reset".
func isConnReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF)
}
