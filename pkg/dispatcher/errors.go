package dispatcher

import "fmt"

// ProviderError reports a failed call to the completion provider: network
// failure, authentication failure, rate limiting, a malformed response, or a
// response without choices. The cause is available through errors.Is/As, e.g.
// *modeladapter.StatusError, *modeladapter.RateLimitError or
// modeladapter.ErrNoChoices.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Provider != "" && e.Model != "":
		return fmt.Sprintf("dispatcher: provider %s (model %s): %v", e.Provider, e.Model, e.Err)
	case e.Model != "":
		return fmt.Sprintf("dispatcher: model %s: %v", e.Model, e.Err)
	default:
		return fmt.Sprintf("dispatcher: provider call failed: %v", e.Err)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }
