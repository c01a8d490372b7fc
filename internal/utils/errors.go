package utils

import (
	"errors"
	"net/http"

	"cine-storefront/internal/models"
)

// WriteServiceError maps a domain error to its HTTP status and writes the envelope.
// It reports whether the error was unexpected, so callers log only those at ERROR.
func WriteServiceError(w http.ResponseWriter, err error) (unexpected bool) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteFieldError(w, ve.Field, ve.Message)
	case errors.Is(err, models.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Pedido não encontrado", "order_not_found")
	case errors.Is(err, models.ErrSellerNotFound):
		WriteError(w, http.StatusNotFound, "Vendedor não encontrado", "seller_not_found")
	case errors.Is(err, models.ErrTicketCancelled):
		WriteError(w, http.StatusGone, "Este ingresso foi cancelado", "ticket_cancelled")
	case errors.Is(err, models.ErrTicketAlreadyUsed):
		WriteError(w, http.StatusConflict, "Ingresso já foi utilizado", "ticket_already_used")
	default:
		WriteError(w, http.StatusInternalServerError, GenericErrorMessage, "internal_error")
		return true
	}
	return false
}
