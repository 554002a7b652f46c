package operations

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/nixpig/jailer/pkg/jail"
)

// ListEntry is a summary of a running jail.
type ListEntry struct {
	JID      int          `json:"jid" yaml:"jid"`
	Name     string       `json:"name" yaml:"name"`
	Hostname string       `json:"hostname" yaml:"hostname"`
	Path     string       `json:"path" yaml:"path"`
	IPs      []netip.Addr `json:"ips,omitempty" yaml:"ips,omitempty"`
}

// List returns a summary of every running jail in jid order.
func List() ([]ListEntry, error) {
	var (
		entries []ListEntry
		failed  error
	)

	err := jail.Walk(func(r jail.Running) bool {
		entry, err := summarise(r)
		if errors.Is(err, jail.ErrNotFound) {
			// Removed after it was found.
			return true
		}
		if err != nil {
			failed = fmt.Errorf("inspect %s: %w", r, err)
			return false
		}

		entries = append(entries, entry)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list jails: %w", err)
	}

	if failed != nil {
		return nil, fmt.Errorf("list jails: %w", failed)
	}

	return entries, nil
}

func summarise(r jail.Running) (ListEntry, error) {
	name, err := r.Name()
	if err != nil {
		return ListEntry{}, err
	}

	hostname, err := r.Hostname()
	if err != nil {
		return ListEntry{}, err
	}

	path, err := r.Path()
	if err != nil {
		return ListEntry{}, err
	}

	ips, err := r.IPs()
	if err != nil {
		return ListEntry{}, err
	}

	return ListEntry{
		JID:      r.JID,
		Name:     name,
		Hostname: hostname,
		Path:     path,
		IPs:      ips,
	}, nil
}
