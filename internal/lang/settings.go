package lang

// LanguageSetting is one entry of the Settings.Languages map.
type LanguageSetting struct {
	Enabled bool
}

// Settings is the configuration surface consumed by LanguageDefinition
// discovery. Languages is keyed by display name ("Nix", "Python", ...),
// the same name each LanguageDefinition passes to IsEnabled.
type Settings struct {
	Languages map[string]LanguageSetting
}

// IsEnabled reports whether displayName is enabled in s, falling back
// to defaultEnabled when the language is absent from the map (spec 6
// "Unknown languages default to their default_enabled() answer").
func (s Settings) IsEnabled(displayName string, defaultEnabled bool) bool {
	if s.Languages == nil {
		return defaultEnabled
	}
	setting, ok := s.Languages[displayName]
	if !ok {
		return defaultEnabled
	}
	return setting.Enabled
}
