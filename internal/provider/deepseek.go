// Package provider: DeepSeek completion provider.
package provider

// DeepSeek API constants. The API is OpenAI-compatible, so the provider is
// the OpenAI client pointed at the DeepSeek endpoint.
const (
	deepSeekBaseURL = "https://api.deepseek.com"
	deepSeekModel   = "deepseek-chat"
)

// NewDeepSeek creates a DeepSeek provider with the given API key.
func NewDeepSeek(apiKey string) (*OpenAI, error) {
	return NewOpenAI(
		WithAPIKey(apiKey),
		WithBaseURL(deepSeekBaseURL),
		WithModel(deepSeekModel),
		WithName("deepseek"),
	)
}
