package config

import "crypto/subtle"

// SecretStringValue is what gets written instead of the actual secret.
const SecretStringValue = "<secret>"

// SecretString is used for configuration values which must not appear in
// logs, dumps or debug reports.
type SecretString string

// MarshalJSON hides actual value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML hides actual value.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// Matches reports whether provided value equals the secret. Empty secret
// never matches.
func (s SecretString) Matches(v string) bool {
	return len(s) > 0 && subtle.ConstantTimeCompare([]byte(s), []byte(v)) == 1
}
