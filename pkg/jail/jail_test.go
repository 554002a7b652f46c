package jail

import (
	"testing"

	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/internal/platform/platformtest"
	"github.com/nixpig/jailer/pkg/rctl"
)

// withKernel points the package at a fresh in-memory kernel for the
// duration of the test.
func withKernel(t *testing.T) *platformtest.Kernel {
	t.Helper()

	k := platformtest.NewKernel()
	useKernel(t, k, k)

	return k
}

func useKernel(t *testing.T, k platform.Kernel, a platform.Accounting) {
	t.Helper()

	prevKern, prevAccounting := kern, accounting
	kern = k
	accounting = rctl.NewClient(a)

	t.Cleanup(func() {
		kern = prevKern
		accounting = prevAccounting
	})
}
