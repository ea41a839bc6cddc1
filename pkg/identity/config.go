package identity

// Config controls identity parsing.
type Config struct {
	ProviderPrefixes []string `env:"IDENTITY_PROVIDER_PREFIXES" envSeparator:"," envDefault:"google_,github_,user_"`
}

// Parser returns a Parser for the configured prefixes.
func (c Config) Parser() Parser {
	return NewParser(c.ProviderPrefixes...)
}
