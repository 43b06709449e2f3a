package config

import "testing"

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := &Config{Env: "development", DirectoryMode: "pg"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresIssuer(t *testing.T) {
	cfg := &Config{Env: "production", DirectoryMode: "pg"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without auth issuer")
	}
	cfg.AuthIssuer = "https://idp.example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_HTTPModeRequiresBaseURL(t *testing.T) {
	cfg := &Config{Env: "development", DirectoryMode: "http"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for http mode without base URL")
	}
	cfg.DirectoryBaseURL = "https://directory.internal"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsUnknownDirectoryMode(t *testing.T) {
	cfg := &Config{Env: "development", DirectoryMode: "ldap"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown directory mode")
	}
}

func TestIsDevAndIsProduction(t *testing.T) {
	if !(&Config{Env: "development"}).IsDev() {
		t.Error("expected IsDev for development")
	}
	if !(&Config{Env: "production"}).IsProduction() {
		t.Error("expected IsProduction for production")
	}
	if (&Config{Env: "staging"}).IsDev() {
		t.Error("staging must not be dev")
	}
}
