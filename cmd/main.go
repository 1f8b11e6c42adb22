package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"invtrack/config"
	"invtrack/internal/pkg/broker"
	"invtrack/internal/pkg/cache"
	"invtrack/internal/pkg/database"
	"invtrack/internal/pkg/httpclient"
	"invtrack/internal/pkg/logger"
	"invtrack/internal/pkg/token"

	// Camadas do serviço para Injeção de Dependências
	"invtrack/internal/api/router"
	"invtrack/internal/api/stock"
	"invtrack/internal/repository/stockrepo"
	"invtrack/internal/service/notificationservice"
	"invtrack/internal/service/stockservice"
)

// @title Inventory Tracking API
// @version 1.0
// @description API de baixa de estoque com notificação de estoque baixo.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço de Inventory Tracking...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir (e.g., em container), as variáveis vêm do ambiente do sistema.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	logg := logger.NewLogger(cfg.LogLevel)

	// Validação de consistência (limiares de severidade, modo de notificação).
	if err := cfg.Validate(); err != nil {
		logg.Fatal("Configuração inválida.", err)
	}
	logg.Info("Configurações carregadas e validadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	logg.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	logg.Info("Cliente Redis inicializado.", nil)

	// C. Broker (Kafka) — o contexto de vida do processo limita o laço de
	// reconexão: o cancel no shutdown interrompe qualquer Connect pendente.
	brokerCtx, brokerCancel := context.WithCancel(context.Background())
	defer brokerCancel()

	producerFactory := func(topic string) broker.Producer {
		return broker.NewKafkaProducer(topic, cfg.KafkaBroker, cfg.KafkaClientID, logg)
	}
	registry := broker.NewRegistry(brokerCtx, producerFactory, logg)

	// D. Cliente HTTP do webhook de notificação
	webhookClient := httpclient.NewClient(10*time.Second, logg)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	stockRepo := stockrepo.NewStockRepository(db, cacheClient, cfg.DBTimeout, cfg.StockCacheTTL, logg)
	logg.Debug("Repositório de Estoque inicializado.", nil)

	notificationSvc := notificationservice.NewService(cfg, webhookClient, registry, logg)
	logg.Debug("Serviço de Notificação inicializado.", nil)

	stockSvc := stockservice.NewService(stockRepo, notificationSvc, cfg, logg)
	logg.Debug("Serviço de Estoque inicializado.", nil)

	stockHandler := stock.NewHandler(stockSvc, logg)
	logg.Debug("Handler de Estoque inicializado.", nil)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	logg.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(router.Deps{
		StockHandler:         stockHandler,
		TokenService:         tokenSvc,
		CacheClient:          cacheClient,
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		logg.Info("Servidor de Inventory Tracking ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logg.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Cancela qualquer laço de reconexão do broker ainda pendente
	brokerCancel()

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("Desligamento do servidor forçado.", err)
	}

	// Fecha os produtores do broker (best-effort)
	registry.Shutdown()

	logg.Info("Servidor encerrado com sucesso.", nil)
}
