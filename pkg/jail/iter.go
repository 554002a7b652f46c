package jail

import (
	"errors"
	"iter"
	"syscall"

	"github.com/nixpig/jailer/internal/platform"
)

// next returns the running jail with the lowest jid above last. It returns
// false once there are no more jails.
func next(last int) (Running, bool, error) {
	jid, err := kern.JailGet([]platform.JailParam{
		platform.Int32Param("lastjid", int32(last)),
	}, 0)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) {
			return Running{}, false, nil
		}

		return Running{}, false, kernelError("jail_get", err)
	}

	return Running{JID: jid}, true, nil
}

// All returns an iterator over the running jails in ascending jid order.
// Each step queries the kernel for the next jail, so jails created or
// removed during iteration may or may not be seen. Iteration ends early on
// a kernel error; use Walk to observe it.
func All() iter.Seq[Running] {
	return func(yield func(Running) bool) {
		_ = Walk(func(r Running) bool {
			return yield(r)
		})
	}
}

// Walk calls fn for each running jail in ascending jid order until fn
// returns false. It returns the kernel error that ended iteration, if any.
func Walk(fn func(Running) bool) error {
	last := 0
	for {
		r, ok, err := next(last)
		if err != nil {
			return err
		}

		if !ok || !fn(r) {
			return nil
		}

		last = r.JID
	}
}
