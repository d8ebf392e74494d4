package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/farmfeed/ledger_service/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// PairIDTag validates farmer and dealer ids: non-blank and free of the pair key separator.
const PairIDTag = "pairid"

// FieldError is one failed binding rule, shaped for API responses.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

var registerOnce sync.Once

// RegisterGinValidators installs the custom tags on gin's default validator.
func RegisterGinValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		err = Register(v)
	})
	return err
}

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(PairIDTag, validatePairID); err != nil {
		return fmt.Errorf("failed to register %s validation: %w", PairIDTag, err)
	}
	return nil
}

func validatePairID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return strings.TrimSpace(id) != "" && !strings.Contains(id, domain.PairKeySeparator)
}

// FieldErrors flattens validator errors; any other error yields nil.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}
