package provider

import (
	"fmt"
	"net/http"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"
)

// Options configure a provider built by New.
type Options struct {
	// Name selects the backend: "openai" or "anthropic".
	Name    string
	APIKey  string
	BaseURL string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	// MaxRetries is passed to the SDK when >= 0.
	MaxRetries int
}

// New builds the provider named in opts.
func New(opts Options) (Provider, error) {
	switch opts.Name {
	case "", "openai":
		var o []openaiopt.RequestOption
		if opts.APIKey != "" {
			o = append(o, openaiopt.WithAPIKey(opts.APIKey))
		}
		if opts.BaseURL != "" {
			o = append(o, openaiopt.WithBaseURL(opts.BaseURL))
		}
		if opts.HTTPClient != nil {
			o = append(o, openaiopt.WithHTTPClient(opts.HTTPClient))
		}
		if opts.MaxRetries >= 0 {
			o = append(o, openaiopt.WithMaxRetries(opts.MaxRetries))
		}
		return NewOpenAI(o...), nil
	case "anthropic":
		var o []anthropicopt.RequestOption
		if opts.APIKey != "" {
			o = append(o, anthropicopt.WithAPIKey(opts.APIKey))
		}
		if opts.BaseURL != "" {
			o = append(o, anthropicopt.WithBaseURL(opts.BaseURL))
		}
		if opts.HTTPClient != nil {
			o = append(o, anthropicopt.WithHTTPClient(opts.HTTPClient))
		}
		if opts.MaxRetries >= 0 {
			o = append(o, anthropicopt.WithMaxRetries(opts.MaxRetries))
		}
		return NewAnthropic(o...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Name)
	}
}
