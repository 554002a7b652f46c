package operations

import (
	"fmt"
	"os"

	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/pkg/jail"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a jail configuration saved as YAML.
func LoadConfig(path string) (jail.Stopped, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return jail.Stopped{}, fmt.Errorf("read config: %w", err)
	}

	var s jail.Stopped
	if err := yaml.Unmarshal(b, &s); err != nil {
		return jail.Stopped{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return s, nil
}

// writeConfig marshals s as YAML and, when output is set, atomically
// replaces the file at output with it.
func writeConfig(s jail.Stopped, output string) (string, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	if output != "" {
		if err := platform.AtomicWriteFile(output, b, 0o644); err != nil {
			return "", fmt.Errorf("write config: %w", err)
		}
	}

	return string(b), nil
}
