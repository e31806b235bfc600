package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed all:templates
var templatesFS embed.FS

// GetTemplatesFS returns the embedded templates filesystem for testing purposes.
// This allows tests to access embedded templates without filesystem I/O.
func GetTemplatesFS() embed.FS {
	return templatesFS
}

// Scaffolder writes provider config templates into a target directory.
type Scaffolder struct {
	verbose bool
}

// NewScaffolder creates a new Scaffolder instance
func NewScaffolder(verbose bool) *Scaffolder {
	return &Scaffolder{
		verbose: verbose,
	}
}

// ListProviders returns the provider template names (rds, azure, google).
func ListProviders() ([]string, error) {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}

	var providers []string
	for _, entry := range entries {
		if entry.IsDir() {
			providers = append(providers, entry.Name())
		}
	}
	sort.Strings(providers)

	return providers, nil
}

// TemplateFiles returns the files a provider template creates, relative to
// the target directory.
func TemplateFiles(provider string) ([]string, error) {
	templatePath := "templates/" + provider
	if _, err := templatesFS.ReadDir(templatePath); err != nil {
		return nil, fmt.Errorf("unknown provider %q: %w", provider, err)
	}

	var files []string
	err := fs.WalkDir(templatesFS, templatePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(templatePath, path)
		if err != nil {
			return err
		}
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	return files, nil
}

// ExistingFiles reports which of the provider's files already exist in dir.
func (s *Scaffolder) ExistingFiles(provider, dir string) ([]string, error) {
	files, err := TemplateFiles(provider)
	if err != nil {
		return nil, err
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			existing = append(existing, f)
		}
	}
	return existing, nil
}

// WriteFiles renders the provider template into dir, substituting {{KEY}}
// placeholders with the given values. Existing files are refused unless
// overwrite is set. It returns the relative paths written.
func (s *Scaffolder) WriteFiles(provider, dir string, values map[string]string, overwrite bool) ([]string, error) {
	templatePath := "templates/" + provider
	if _, err := templatesFS.ReadDir(templatePath); err != nil {
		return nil, fmt.Errorf("unknown provider %q: %w", provider, err)
	}

	if !overwrite {
		existing, err := s.ExistingFiles(provider, dir)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("refusing to overwrite %s in %s", strings.Join(existing, ", "), dir)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	s.logVerbose("Writing %s config into %s", provider, dir)

	var written []string
	err := fs.WalkDir(templatesFS, templatePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(templatePath, path)
		if err != nil {
			return err
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		processed := processTemplate(string(content), values)

		targetFilePath := filepath.Join(dir, relPath)
		s.logVerbose("Creating file: %s", relPath)
		if err := os.WriteFile(targetFilePath, []byte(processed), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", targetFilePath, err)
		}

		written = append(written, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(written)

	return written, nil
}

// processTemplate replaces {{KEY}} placeholders in content. Keys absent
// from values collapse to the empty string so no placeholder survives
// into a generated file.
func processTemplate(content string, values map[string]string) string {
	for _, key := range templateKeys {
		content = strings.ReplaceAll(content, "{{"+key+"}}", values[key])
	}
	return content
}

// templateKeys lists every placeholder the templates may reference.
var templateKeys = []string{"URL", "USER", "REGION", "TENANT_ID", "CLIENT_ID"}

func (s *Scaffolder) logVerbose(format string, args ...interface{}) {
	if s.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
