package google

import (
	"errors"

	"google.golang.org/genai"

	"github.com/kwerner/anvil"
)

// wrapError categorizes a GenAI SDK error for retry handling. The genai
// APIError does not expose headers, so no Retry-After is available.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Code
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
