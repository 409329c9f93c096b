package config

// SecretStringValue replaces real secrets in any marshaled output. Exported
// so tests can assert on the mask.
const SecretStringValue = "<secret>"

// SecretString holds values that must never appear in logs, dumped
// configuration or debug reports - the asset service token lives in one.
type SecretString string

// MarshalJSON emits the mask instead of the value; empty secrets stay null.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML emits the mask instead of the value; empty secrets stay null.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}
