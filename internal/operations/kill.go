package operations

import (
	"fmt"
)

type KillOpts struct {
	ID string
}

func Kill(opts *KillOpts) error {
	r, err := lookup(opts.ID)
	if err != nil {
		return err
	}

	if err := r.Kill(); err != nil {
		return fmt.Errorf("kill jail: %w", err)
	}

	return nil
}

type RestartOpts struct {
	ID string
}

// Restart kills a jail and starts it again from its saved configuration,
// returning the new jid.
func Restart(opts *RestartOpts) (int, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return 0, err
	}

	restarted, err := r.Restart()
	if err != nil {
		return 0, fmt.Errorf("restart jail: %w", err)
	}

	return restarted.JID, nil
}

type DeferCleanupOpts struct {
	ID string
}

// DeferCleanup clears the persist flag of a jail, so that it is removed by
// the kernel once its last process exits.
func DeferCleanup(opts *DeferCleanupOpts) error {
	r, err := lookup(opts.ID)
	if err != nil {
		return err
	}

	if err := r.DeferCleanup(); err != nil {
		return fmt.Errorf("defer cleanup of jail: %w", err)
	}

	return nil
}
