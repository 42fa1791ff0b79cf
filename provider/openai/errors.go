package openai

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openai/openai-go"

	"github.com/kwerner/anvil"
)

// wrapError categorizes an OpenAI SDK error for retry handling. It extracts
// status codes and Retry-After headers.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.StatusCode
	msg := err.Error()

	if retryAfter := parseRetryAfter(apiErr.Response); retryAfter > 0 {
		return anvil.NewTransientErrorWithRetry(msg, code, retryAfter, err)
	}

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

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
