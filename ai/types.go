package ai

// ProviderKind identifies one of the two interchangeable provider families.
type ProviderKind int

const (
	// ProviderGoogle is the Google Generative AI family (Gemini).
	ProviderGoogle ProviderKind = iota + 1
	// ProviderOpenAI is the OpenAI family.
	ProviderOpenAI
)

// String returns the lowercase family name.
func (k ProviderKind) String() string {
	switch k {
	case ProviderGoogle:
		return "google"
	case ProviderOpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

// SelectProvider picks the provider family from the credentials present in cfg.
// Google wins whenever its key is non-empty, regardless of the OpenAI key.
// Keys are not trimmed: any non-empty value counts as present.
// It has no side effects and never touches the network.
func SelectProvider(cfg *Config) (ProviderKind, error) {
	if cfg == nil {
		return 0, ErrConfigRequired
	}
	if cfg.GoogleAPIKey != "" {
		return ProviderGoogle, nil
	}
	if cfg.OpenAIAPIKey != "" {
		return ProviderOpenAI, nil
	}
	return 0, ErrNoCredentials
}
