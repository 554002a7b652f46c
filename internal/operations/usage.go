package operations

import (
	"fmt"

	"github.com/nixpig/jailer/pkg/rctl"
)

type UsageOpts struct {
	ID string
}

func Usage(opts *UsageOpts) (map[rctl.Resource]uint64, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return nil, err
	}

	usage, err := r.RacctStatistics()
	if err != nil {
		return nil, fmt.Errorf("get resource usage: %w", err)
	}

	return usage, nil
}
