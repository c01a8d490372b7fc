package order

import (
	"errors"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"cine-storefront/internal/models"
)

// CheckoutRequest is the submitted checkout form.
type CheckoutRequest struct {
	CustomerName     string  `form:"customer_name" validate:"required,max=120"`
	CustomerWhatsApp string  `form:"customer_whatsapp" validate:"required,numeric"`
	SellerID         string  `form:"seller_id" validate:"omitempty,uuid"`
	ProductID        string  `form:"product_id" validate:"required"`
	Receipt          *Upload `form:"receipt" validate:"required"`
}

// Upload is the receipt file attached to a checkout.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        []byte
}

var fieldMessages = map[string]string{
	"customer_name":     "Informe seu nome",
	"customer_whatsapp": "Informe um WhatsApp válido",
	"seller_id":         "Selecione um vendedor válido",
	"product_id":        "Selecione um produto",
	"receipt":           "Envie o comprovante de pagamento",
}

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// toValidationError maps the first failing field to a user-facing message.
func toValidationError(err error) error {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	field := ve[0].Field()
	msg, ok := fieldMessages[field]
	if !ok {
		msg = ve[0].Error()
	}
	return models.NewValidationError(field, msg)
}
