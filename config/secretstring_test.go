package config

import (
	"encoding/json"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestSecretString_Masking(t *testing.T) {
	tests := []struct {
		name     string
		input    SecretString
		wantJSON string
		wantYAML any
	}{
		{name: "empty", input: "", wantJSON: "null", wantYAML: nil},
		{name: "token", input: "pbc-asset-token-123", wantJSON: `"` + SecretStringValue + `"`, wantYAML: SecretStringValue},
		{name: "single char", input: "x", wantJSON: `"` + SecretStringValue + `"`, wantYAML: SecretStringValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.wantJSON)
			}

			y, err := tt.input.MarshalYAML()
			if err != nil {
				t.Fatalf("MarshalYAML() error = %v", err)
			}
			if y != tt.wantYAML {
				t.Errorf("MarshalYAML() = %v, want %v", y, tt.wantYAML)
			}
		})
	}
}

// The assets config embeds the token as SecretString - a configuration dump
// must never contain the real value.
func TestSecretString_NoLeakInConfigDump(t *testing.T) {
	cfg := struct {
		Endpoint string       `json:"endpoint" yaml:"endpoint"`
		Token    SecretString `json:"token" yaml:"token"`
	}{
		Endpoint: "http://127.0.0.1:8000/api/assets/",
		Token:    "very-real-bearer-token",
	}

	jsonOut, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(jsonOut), string(cfg.Token)) {
		t.Errorf("token leaked into JSON: %s", jsonOut)
	}

	yamlOut, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if strings.Contains(string(yamlOut), string(cfg.Token)) {
		t.Errorf("token leaked into YAML: %s", yamlOut)
	}
	if !strings.Contains(string(yamlOut), SecretStringValue) {
		t.Errorf("mask missing from YAML: %s", yamlOut)
	}
}

// The client still needs the real value at request time.
func TestSecretString_UsableAsString(t *testing.T) {
	token := SecretString("bearer-abc")
	if string(token) != "bearer-abc" {
		t.Errorf("string(token) = %s", string(token))
	}
}
