package operations

import (
	"fmt"
)

type StopOpts struct {
	ID     string
	Output string
}

// Stop saves the configuration of a jail and kills it. The configuration is
// returned as YAML, and also written to Output when it is set.
func Stop(opts *StopOpts) (string, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return "", err
	}

	s, err := r.Stop()
	if err != nil {
		return "", fmt.Errorf("stop jail: %w", err)
	}

	return writeConfig(s, opts.Output)
}

type SaveOpts struct {
	ID     string
	Output string
}

// Save returns the configuration of a running jail as YAML, and also writes
// it to Output when it is set.
func Save(opts *SaveOpts) (string, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return "", err
	}

	s, err := r.Save()
	if err != nil {
		return "", fmt.Errorf("save jail: %w", err)
	}

	return writeConfig(s, opts.Output)
}
