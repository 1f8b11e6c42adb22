package middleware

import (
	"context"
	"net/http"

	apperror "invtrack/internal/errors"
	"invtrack/internal/pkg/token"
)

// ContextKey é o tipo das chaves usadas para anexar valores ao contexto.
// Usamos um tipo próprio para garantir que a chave seja única e não haja
// conflito com chaves string de outros pacotes.
type ContextKey int

const (
	// CallerClaimsKey é a chave usada para armazenar as claims do chamador no contexto.
	CallerClaimsKey ContextKey = iota
)

// CallerClaims representa a identidade extraída do token JWT,
// anexada ao contexto da requisição.
type CallerClaims struct {
	CallerID string
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware cria uma função de middleware que valida um JWT e anexa
// a identidade do chamador ao contexto da requisição. Protege as rotas que
// mutam estoque; as leituras e o health check ficam abertas.
func NewAuthMiddleware(tokenSvc TokenService) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || len(authHeader) < 7 || authHeader[:7] != "Bearer " {
				http.Error(w, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado.").Error(), http.StatusUnauthorized)
				return
			}

			tokenString := authHeader[7:]

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, apperror.NewUnauthorizedError("Token inválido ou expirado.").Error(), http.StatusUnauthorized)
				return
			}

			// 3. Anexar a identidade ao Contexto
			callerClaims := CallerClaims{
				CallerID: claims.CallerID,
			}

			ctx := context.WithValue(r.Context(), CallerClaimsKey, callerClaims)

			// Chama o próximo handler com o novo contexto
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetCallerClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetCallerClaimsFromContext(ctx context.Context) (CallerClaims, bool) {
	claims, ok := ctx.Value(CallerClaimsKey).(CallerClaims)
	return claims, ok
}
