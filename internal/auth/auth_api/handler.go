package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cine-storefront/internal/auth"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/utils"
)

type Handler struct {
	Auth   *auth.Service
	Logger *logger.Logger
}

func NewHandler(svc *auth.Service, log *logger.Logger) *Handler {
	return &Handler{Auth: svc, Logger: log}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Requisição inválida", "invalid_body")
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		utils.WriteError(w, http.StatusUnauthorized, "Senha incorreta", "invalid_credentials")
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Login realizado", res)
}

// Logout handles POST /api/admin/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Acesso restrito", "unauthorized")
		return
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			utils.WriteError(w, http.StatusUnauthorized, "Acesso restrito", "unauthorized")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Logout: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, utils.GenericErrorMessage, "internal_error")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Sessão encerrada", nil)
}
