package web

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"CandleScan/pkg/candle"
	xhttp "CandleScan/pkg/http"
)

var registerOnce sync.Once

// RegisterValidations installs the candle_pattern tag on the shared request validator.
func RegisterValidations() error {
	var err error
	registerOnce.Do(func() {
		err = xhttp.RegisterValidation("candle_pattern", func(fl validator.FieldLevel) bool {
			return candle.IsKnown(fl.Field().String())
		}, func(field string) string {
			return field + " must be a supported candlestick pattern"
		})
	})
	return err
}
