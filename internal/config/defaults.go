package config

// DefaultBaseURL is the RAG backend address used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8000"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.Questions.DefaultMode == "" {
		cfg.Questions.DefaultMode = "hybrid"
	}
	if cfg.Questions.DefaultTopK == 0 {
		cfg.Questions.DefaultTopK = 5
	}
	if cfg.Questions.DefaultRerank == nil {
		t := true
		cfg.Questions.DefaultRerank = &t
	}
	if cfg.Inbox.Extensions == nil {
		cfg.Inbox.Extensions = []string{".pdf"}
	}
	if cfg.Inbox.UploadsPerSecond == 0 {
		cfg.Inbox.UploadsPerSecond = 0.5
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Inbox.Directories) > 0 && cfg.Inbox.Recursive == nil {
		t := true
		cfg.Inbox.Recursive = &t
	}
}
