package operations

import (
	"fmt"

	"github.com/nixpig/jailer/pkg/jail"
)

type ParamGetOpts struct {
	ID   string
	Name string
}

func ParamGet(opts *ParamGetOpts) (jail.Value, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return nil, err
	}

	v, err := r.Param(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", opts.Name, err)
	}

	return v, nil
}

type ParamSetOpts struct {
	ID    string
	Name  string
	Value string
}

// ParamSet parses Value according to the kernel's type for the parameter and
// sets it on a running jail.
func ParamSet(opts *ParamSetOpts) error {
	r, err := lookup(opts.ID)
	if err != nil {
		return err
	}

	v, err := parseParam(opts.Name, opts.Value)
	if err != nil {
		return err
	}

	if err := r.ParamSet(opts.Name, v); err != nil {
		return fmt.Errorf("set %s: %w", opts.Name, err)
	}

	return nil
}

type ParamListOpts struct {
	ID string
}

func ParamList(opts *ParamListOpts) (jail.Params, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return nil, err
	}

	params, err := r.Params()
	if err != nil {
		return nil, fmt.Errorf("get params: %w", err)
	}

	return params, nil
}
