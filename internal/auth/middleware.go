package auth

import (
	"errors"
	"fmt"
	"net/http"

	"cine-storefront/internal/utils"
)

// Middleware rejects requests without a valid admin session.
func (s *Service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Acesso restrito", "unauthorized")
				return
			}

			if _, err := s.Authenticate(r.Context(), rawToken); err != nil {
				if errors.Is(err, ErrUnauthorized) {
					s.Logger.LogSecurity("AUTH_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
					utils.WriteError(w, http.StatusUnauthorized, "Sessão expirada. Entre novamente.", "unauthorized")
					return
				}
				s.Logger.Error("AUTH", fmt.Sprintf("session lookup failed: %v", err))
				utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
