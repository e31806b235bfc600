package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"

	"github.com/camholmes12/pgiamauth/internal/config"
)

func sampleValues() map[string]string {
	return map[string]string{
		"URL":       "jdbc:postgresql://db.example.com:5432/app",
		"USER":      "app_user",
		"REGION":    "us-east-1",
		"TENANT_ID": "11111111-2222-3333-4444-555555555555",
		"CLIENT_ID": "66666666-7777-8888-9999-000000000000",
	}
}

func TestListProviders(t *testing.T) {
	providers, err := ListProviders()
	if err != nil {
		t.Fatalf("ListProviders() error: %v", err)
	}

	want := []string{"azure", "google", "rds"}
	if len(providers) != len(want) {
		t.Fatalf("ListProviders() = %v, want %v", providers, want)
	}
	for i, p := range want {
		if providers[i] != p {
			t.Errorf("ListProviders()[%d] = %q, want %q", i, providers[i], p)
		}
	}
}

func TestTemplateFiles(t *testing.T) {
	for _, provider := range []string{"rds", "azure", "google"} {
		t.Run(provider, func(t *testing.T) {
			files, err := TemplateFiles(provider)
			if err != nil {
				t.Fatalf("TemplateFiles(%q) error: %v", provider, err)
			}

			got := strings.Join(files, ",")
			for _, want := range []string{config.ConfigFileName, ".env.example"} {
				if !strings.Contains(got, want) {
					t.Errorf("TemplateFiles(%q) = %v, missing %q", provider, files, want)
				}
			}
		})
	}
}

func TestTemplateFiles_UnknownProvider(t *testing.T) {
	_, err := TemplateFiles("oracle")
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "oracle") {
		t.Errorf("Error should name the provider, got: %v", err)
	}
}

func TestWriteFiles_CreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	scaffolder := NewScaffolder(false)
	written, err := scaffolder.WriteFiles("rds", dir, sampleValues(), false)
	if err != nil {
		t.Fatalf("WriteFiles() error: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("WriteFiles() wrote %v, want 2 files", written)
	}

	data, err := os.ReadFile(filepath.Join(dir, config.ConfigFileName))
	if err != nil {
		t.Fatalf("Failed to read generated config: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "jdbc:postgresql://db.example.com:5432/app") {
		t.Errorf("Generated config missing URL, got:\n%s", content)
	}
	if strings.Contains(content, "{{") {
		t.Errorf("Generated config has unsubstituted placeholders:\n%s", content)
	}
}

func TestWriteFiles_RoundTripsThroughConfigLoad(t *testing.T) {
	dir := t.TempDir()

	scaffolder := NewScaffolder(false)
	if _, err := scaffolder.WriteFiles("rds", dir, sampleValues(), false); err != nil {
		t.Fatalf("WriteFiles() error: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Generated %s does not load: %v", config.ConfigFileName, err)
	}

	if cfg.Connection.URL != "jdbc:postgresql://db.example.com:5432/app" {
		t.Errorf("connection.url = %q", cfg.Connection.URL)
	}
	if cfg.Connection.User != "app_user" {
		t.Errorf("connection.user = %q", cfg.Connection.User)
	}
	if cfg.Connection.Region != "us-east-1" {
		t.Errorf("connection.region = %q", cfg.Connection.Region)
	}
	if cfg.Provider != "rds" {
		t.Errorf("provider = %q, want rds", cfg.Provider)
	}
	if cfg.Cache.TTL != "11m" {
		t.Errorf("cache.ttl = %q, want 11m", cfg.Cache.TTL)
	}
}

func TestWriteFiles_AzureCarriesServicePrincipal(t *testing.T) {
	dir := t.TempDir()

	scaffolder := NewScaffolder(false)
	if _, err := scaffolder.WriteFiles("azure", dir, sampleValues(), false); err != nil {
		t.Fatalf("WriteFiles() error: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Generated %s does not load: %v", config.ConfigFileName, err)
	}
	if cfg.Provider != "azure" {
		t.Errorf("provider = %q, want azure", cfg.Provider)
	}
	if cfg.Azure.TenantID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("azure.tenant_id = %q", cfg.Azure.TenantID)
	}
	if cfg.Azure.ClientID != "66666666-7777-8888-9999-000000000000" {
		t.Errorf("azure.client_id = %q", cfg.Azure.ClientID)
	}
}

func TestWriteFiles_EveryProviderLoads(t *testing.T) {
	providers, err := ListProviders()
	if err != nil {
		t.Fatalf("ListProviders() error: %v", err)
	}

	for _, provider := range providers {
		t.Run(provider, func(t *testing.T) {
			dir := t.TempDir()
			scaffolder := NewScaffolder(false)
			if _, err := scaffolder.WriteFiles(provider, dir, sampleValues(), false); err != nil {
				t.Fatalf("WriteFiles() error: %v", err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatalf("Generated %s does not load: %v", config.ConfigFileName, err)
			}
			if cfg.Provider != provider {
				t.Errorf("provider = %q, want %q", cfg.Provider, provider)
			}
		})
	}
}

func TestWriteFiles_EnvExampleParses(t *testing.T) {
	providers, err := ListProviders()
	if err != nil {
		t.Fatalf("ListProviders() error: %v", err)
	}

	for _, provider := range providers {
		t.Run(provider, func(t *testing.T) {
			dir := t.TempDir()
			scaffolder := NewScaffolder(false)
			if _, err := scaffolder.WriteFiles(provider, dir, sampleValues(), false); err != nil {
				t.Fatalf("WriteFiles() error: %v", err)
			}

			data, err := os.ReadFile(filepath.Join(dir, ".env.example"))
			if err != nil {
				t.Fatalf("Failed to read .env.example: %v", err)
			}
			if _, err := godotenv.Unmarshal(string(data)); err != nil {
				t.Errorf(".env.example does not parse as dotenv: %v", err)
			}
		})
	}
}

func TestWriteFiles_EmptyValuesLeaveNoPlaceholders(t *testing.T) {
	dir := t.TempDir()

	scaffolder := NewScaffolder(false)
	written, err := scaffolder.WriteFiles("azure", dir, map[string]string{}, false)
	if err != nil {
		t.Fatalf("WriteFiles() error: %v", err)
	}

	for _, f := range written {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", f, err)
		}
		if strings.Contains(string(data), "{{") {
			t.Errorf("%s has unsubstituted placeholders:\n%s", f, data)
		}
	}
}

func TestWriteFiles_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, config.ConfigFileName)
	if err := os.WriteFile(existing, []byte("provider: rds\n"), 0644); err != nil {
		t.Fatalf("Failed to create existing config: %v", err)
	}

	scaffolder := NewScaffolder(false)
	_, err := scaffolder.WriteFiles("rds", dir, sampleValues(), false)
	if err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if !strings.Contains(err.Error(), config.ConfigFileName) {
		t.Errorf("Error should name the existing file, got: %v", err)
	}

	// The refused write must not touch the existing file.
	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "provider: rds\n" {
		t.Errorf("Existing file was modified: %q", data)
	}
}

func TestWriteFiles_OverwriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, config.ConfigFileName)
	if err := os.WriteFile(existing, []byte("provider: rds\n"), 0644); err != nil {
		t.Fatalf("Failed to create existing config: %v", err)
	}

	scaffolder := NewScaffolder(false)
	if _, err := scaffolder.WriteFiles("google", dir, sampleValues(), true); err != nil {
		t.Fatalf("WriteFiles() with overwrite error: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Overwritten config does not load: %v", err)
	}
	if cfg.Provider != "google" {
		t.Errorf("provider = %q, want google after overwrite", cfg.Provider)
	}
}

func TestWriteFiles_CreatesTargetDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "project")

	scaffolder := NewScaffolder(false)
	if _, err := scaffolder.WriteFiles("rds", dir, sampleValues(), false); err != nil {
		t.Fatalf("WriteFiles() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Errorf("Expected config in created directory: %v", err)
	}
}

func TestWriteFiles_UnknownProvider(t *testing.T) {
	scaffolder := NewScaffolder(false)
	_, err := scaffolder.WriteFiles("oracle", t.TempDir(), sampleValues(), false)
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestExistingFiles(t *testing.T) {
	dir := t.TempDir()
	scaffolder := NewScaffolder(false)

	existing, err := scaffolder.ExistingFiles("rds", dir)
	if err != nil {
		t.Fatalf("ExistingFiles() error: %v", err)
	}
	if len(existing) != 0 {
		t.Errorf("Fresh directory should report no existing files, got %v", existing)
	}

	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	existing, err = scaffolder.ExistingFiles("rds", dir)
	if err != nil {
		t.Fatalf("ExistingFiles() error: %v", err)
	}
	if len(existing) != 1 || existing[0] != config.ConfigFileName {
		t.Errorf("ExistingFiles() = %v, want [%s]", existing, config.ConfigFileName)
	}
}
