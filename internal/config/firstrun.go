package config

// NeedsSetup reports whether the configuration lacks what the gateway
// needs to make a call.
func NeedsSetup(cfg *Config) bool {
	return cfg == nil || cfg.APIKey() == ""
}
