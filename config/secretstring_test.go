package config

import (
	"encoding/json"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

func TestSecretString_Marshal(t *testing.T) {
	tests := []struct {
		name     string
		input    SecretString
		wantJSON string
		wantYAML string
	}{
		{"empty", "", "null", "null"},
		{"short", "x", `"` + SecretStringValue + `"`, SecretStringValue},
		{"long", "this-is-a-very-long-secret-token", `"` + SecretStringValue + `"`, SecretStringValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := tt.input.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(j) != tt.wantJSON {
				t.Errorf("json = %s, want %s", j, tt.wantJSON)
			}
			y, err := yaml.Marshal(tt.input)
			if err != nil {
				t.Fatalf("yaml.Marshal() error = %v", err)
			}
			if got := strings.Trim(strings.TrimSpace(string(y)), `"'`); got != tt.wantYAML {
				t.Errorf("yaml = %q, want %q", y, tt.wantYAML)
			}
		})
	}
}

func TestSecretString_NoLeakage(t *testing.T) {
	type holder struct {
		User  string       `json:"user" yaml:"user"`
		Token SecretString `json:"token" yaml:"token"`
	}
	h := holder{User: "admin", Token: "hunter2"}

	j, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	y, err := yaml.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	for _, out := range []string{string(j), string(y)} {
		if strings.Contains(out, "hunter2") {
			t.Errorf("secret leaked: %s", out)
		}
		if !strings.Contains(out, "admin") {
			t.Errorf("regular field lost: %s", out)
		}
	}
}

func TestSecretString_Unmarshal(t *testing.T) {
	var h struct {
		Token SecretString `yaml:"token"`
	}
	if err := yaml.Unmarshal([]byte("token: hunter2\n"), &h); err != nil {
		t.Fatal(err)
	}
	if string(h.Token) != "hunter2" {
		t.Errorf("Token = %q", h.Token)
	}
}

func TestSecretString_Matches(t *testing.T) {
	tests := []struct {
		secret SecretString
		value  string
		want   bool
	}{
		{"hunter2", "hunter2", true},
		{"hunter2", "hunter3", false},
		{"hunter2", "hunter", false},
		{"hunter2", "", false},
		{"", "", false},
		{"", "anything", false},
	}
	for _, tt := range tests {
		if got := tt.secret.Matches(tt.value); got != tt.want {
			t.Errorf("SecretString(%q).Matches(%q) = %v, want %v", tt.secret, tt.value, got, tt.want)
		}
	}
}
