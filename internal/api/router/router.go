package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "invtrack/docs" // registra a especificação swagger gerada
	"invtrack/internal/api/stock"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/middleware"
)

// Deps agrupa as dependências já inicializadas que o roteador recebe do main
// (injeção explícita por construtor, sem reflexão).
type Deps struct {
	StockHandler *stock.Handler
	TokenService middleware.TokenService
	CacheClient  cache.Client

	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(deps Deps) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// --- 1. Rota de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Documentação da API (Swagger UI) ---
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// --- 3. Rotas do Módulo de Estoque (v1) ---
	// PATCH (baixa de estoque) exige autenticação; GET (consulta) fica aberto.
	authMiddleware := middleware.NewAuthMiddleware(deps.TokenService)
	mux.HandleFunc("/v1/stock/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			authMiddleware(deps.StockHandler.UpdateStockHandler)(w, r)
			return
		}
		deps.StockHandler.StockHandler(w, r)
	})

	// --- 4. Middlewares Globais ---
	// O rate limiter protege o DB do tráfego adjacente ao checkout.
	rateLimiter := middleware.RateLimiter(deps.CacheClient, deps.RateLimitMaxRequests, deps.RateLimitPeriod)

	return rateLimiter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
