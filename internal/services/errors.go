package services

import (
	"errors"

	"storefront/internal/errs"
)

func priceError() error {
	return errs.New(errs.CodeValidation, "invalid price").
		WithFields(map[string]string{"price": "must be a non-negative amount"})
}

// categoryError turns a missing category into a form error and passes
// anything else through.
func categoryError(err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.New(errs.CodeValidation, "unknown category").
			WithFields(map[string]string{"category_id": "choose an existing category"})
	}
	return err
}
