package models

import (
	"fmt"
	"strings"

	"github.com/Windi-Fikriyansyah/workit/internal/utils"
)

func validateStruct(v any) error {
	if err := utils.GetValidator().Struct(v); err != nil {
		errs := utils.ParseErrors(err)
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, " // "))
	}
	return nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
