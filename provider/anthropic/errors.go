package anthropic

import (
	"errors"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kwerner/anvil"
)

// wrapError categorizes an Anthropic SDK error for retry handling.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.StatusCode
	msg := err.Error()

	switch categorizeStatusCode(code) {
	case anvil.ErrorTransient:
		return anvil.NewTransientError(msg, code, err)
	case anvil.ErrorPermanent:
		return anvil.NewPermanentError(msg, code, err)
	case anvil.ErrorUserInput:
		return anvil.NewUserInputError(msg, code, err)
	default:
		return err
	}
}

func categorizeStatusCode(code int) anvil.ErrorCategory {
	switch {
	case code == 429:
		return anvil.ErrorTransient
	case code >= 500 && code < 600:
		return anvil.ErrorTransient
	case code == 401 || code == 403:
		return anvil.ErrorPermanent
	case code == 400 || code == 404 || code == 422:
		return anvil.ErrorUserInput
	default:
		return anvil.ErrorPermanent
	}
}
