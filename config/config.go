package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Modos de disparo da notificação de baixa de estoque.
const (
	NotificationModeSync  = "sync"
	NotificationModeAsync = "async"
)

// Thresholds define os limiares de severidade da notificação de estoque.
// A avaliação é ordenada: <= Blocker, <= Critical, <= Medium, >= Low.
type Thresholds struct {
	Blocker  int
	Critical int
	Medium   int
	Low      int
}

// Config armazena todas as configurações do serviço de Inventory Tracking.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr     string
	CacheTimeout  time.Duration
	StockCacheTTL time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Regra de negócio: quantidade máxima por baixa de estoque
	MaxProductCount int

	// Notificação (webhook síncrono + limiares de severidade)
	NotificationWebhookURL string
	NotificationMode       string // "sync" ou "async"
	NotificationThresholds Thresholds

	// Broker (Kafka)
	KafkaBroker   string
	KafkaTopic    string
	KafkaClientID string
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que a aplicação não inicie se não houver credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Cache (Redis)
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout:  getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,
		StockCacheTTL: getDurationEnv("STOCK_CACHE_TTL_SEC", 10) * time.Second,

		// 4. Segurança (JWT)
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,

		// 6. Regra de negócio
		MaxProductCount: getIntEnv("MAX_PRODUCT_COUNT", 10),

		// 7. Notificação
		NotificationWebhookURL: mustGetEnv("NOTIFICATION_WEBHOOK_URL"),
		NotificationMode:       getEnv("NOTIFICATION_MODE", NotificationModeAsync),
		NotificationThresholds: Thresholds{
			Blocker:  getIntEnv("NOTIFICATION_STOCK_BLOCKER_THRESHOLD", 0),
			Critical: getIntEnv("NOTIFICATION_STOCK_CRITICAL_THRESHOLD", 100),
			Medium:   getIntEnv("NOTIFICATION_STOCK_MEDIUM_THRESHOLD", 5000),
			Low:      getIntEnv("NOTIFICATION_STOCK_LOW_THRESHOLD", 5000),
		},

		// 8. Broker (Kafka)
		KafkaBroker:   getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "inventory-tracking-notifications"),
		KafkaClientID: getEnv("KAFKA_CLIENT_ID", "inventory-tracking-service"),
	}

	return cfg
}

// Validate verifica a consistência das configurações carregadas.
// Em particular, rejeita limiares com Medium < Low: essa combinação deixaria
// uma faixa de disponibilidade sem severidade definida (entre Medium e Low),
// e preferimos falhar na inicialização a decidir em tempo de requisição.
func (c *Config) Validate() error {
	t := c.NotificationThresholds
	if t.Blocker >= t.Critical {
		return fmt.Errorf("limiar BLOCKER (%d) deve ser menor que CRITICAL (%d)", t.Blocker, t.Critical)
	}
	if t.Critical >= t.Medium {
		return fmt.Errorf("limiar CRITICAL (%d) deve ser menor que MEDIUM (%d)", t.Critical, t.Medium)
	}
	if t.Medium < t.Low {
		return fmt.Errorf("limiar MEDIUM (%d) deve ser maior ou igual a LOW (%d): valores entre eles ficariam sem severidade", t.Medium, t.Low)
	}

	if c.MaxProductCount < 1 {
		return fmt.Errorf("MAX_PRODUCT_COUNT deve ser positivo, recebido %d", c.MaxProductCount)
	}

	if c.NotificationMode != NotificationModeSync && c.NotificationMode != NotificationModeAsync {
		return fmt.Errorf("NOTIFICATION_MODE deve ser %q ou %q, recebido %q", NotificationModeSync, NotificationModeAsync, c.NotificationMode)
	}

	return nil
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
