package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerops/recon_app/internal/core/domain"
)

// RegisterValidations wires custom binding validators into gin's validator
// engine. Must be called once before routes are served.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("rowkind", func(fl validator.FieldLevel) bool {
		switch domain.RowKind(fl.Field().String()) {
		case domain.RowPayment, domain.RowCartPayment, domain.RowCartItem,
			domain.RowPaymentSent, domain.RowConversionDebit, domain.RowConversionCredit,
			domain.RowOrder, domain.RowOrderItem:
			return true
		}
		return false
	})
}
