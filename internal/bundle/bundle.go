package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nixpig/jailer/pkg/jail"
	"github.com/opencontainers/runtime-spec/specs-go"
)

// Bundle is an OCI bundle: a directory holding a config.json and the root
// filesystem it refers to.
type Bundle struct {
	Path     string
	Rootfs   string
	SpecPath string
	Spec     specs.Spec
}

func New(path string) (*Bundle, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("get absolute path to bundle: %w", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("check bundle path: %w", err)
	}

	specPath := filepath.Join(absPath, "config.json")
	specJSON, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("read spec from bundle: %w", err)
	}

	var spec specs.Spec
	if err := json.Unmarshal(specJSON, &spec); err != nil {
		return nil, fmt.Errorf("parse spec: %w", err)
	}

	if spec.Root == nil || spec.Root.Path == "" {
		return nil, errors.New("spec has no root path")
	}

	rootfs := spec.Root.Path
	if !filepath.IsAbs(rootfs) {
		rootfs = filepath.Join(absPath, rootfs)
	}

	if _, err := os.Stat(rootfs); err != nil {
		return nil, fmt.Errorf("check rootfs path: %w", err)
	}

	return &Bundle{
		Path:     absPath,
		Spec:     spec,
		SpecPath: specPath,
		Rootfs:   rootfs,
	}, nil
}

// Jail returns the configuration of a jail rooted at the bundle's rootfs.
func (b *Bundle) Jail() (jail.Stopped, error) {
	return jail.FromOCISpec(&b.Spec, b.Path)
}
