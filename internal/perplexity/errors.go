package perplexity

import "fmt"

// ConfigError means the client cannot be constructed at all, most commonly a
// missing API key. It is terminal; nothing was sent.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// AuthenticationError is a 401 from the provider. Retrying cannot help.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "Authentication failed. Please check your API key."
}

// RateLimitError is a 429 from the provider. The client performs no backoff;
// whether and when to retry is the caller's decision.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "Rate limit exceeded. Please wait before making more requests."
}

// ServerError is a 500 from the provider.
type ServerError struct{}

func (e *ServerError) Error() string {
	return "Perplexity API server error. Please try again later."
}

// APIError covers every other non-200 status. Detail carries the provider's
// error message when the body was parseable JSON, otherwise the raw body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API request failed with status code %d", e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
