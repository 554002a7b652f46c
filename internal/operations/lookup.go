package operations

import (
	"fmt"
	"strconv"

	"github.com/nixpig/jailer/pkg/jail"
)

// lookup resolves id, either a jid or a jail name, to a running jail. Unlike
// jail.FromName, a numeric id is checked against the kernel.
func lookup(id string) (jail.Running, error) {
	if jid, err := strconv.Atoi(id); err == nil && jid >= 0 {
		r, err := jail.FromJID(jid)
		if err != nil {
			return jail.Running{}, fmt.Errorf("find jail %s: %w", id, err)
		}

		return r, nil
	}

	r, err := jail.FromName(id)
	if err != nil {
		return jail.Running{}, fmt.Errorf("find jail %s: %w", id, err)
	}

	return r, nil
}
