package jail

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/nixpig/jailer/internal/platform"
)

// kern is the kernel every operation in this package is issued against.
var kern platform.Kernel = platform.Host()

// SetKernel replaces the kernel used by this package.
func SetKernel(k platform.Kernel) {
	kern = k
}

// ParamInfo describes a jail parameter as reported by the sysctl tree.
type ParamInfo struct {
	Name string
	Type Type
	// Mutable is false for parameters that can only be given when the jail
	// is created.
	Mutable bool
	// Size is the encoded size of a value. For strings it is the maximum
	// length including the terminating NUL, and for address lists it is the
	// size of a single address.
	Size int
}

// Describe reads the type, mutability and size of the named parameter from
// the security.jail.param sysctl tree.
func Describe(name string) (ParamInfo, error) {
	oid, err := kern.SysctlLookup(platform.JailParamPrefix + name)
	if err != nil {
		return ParamInfo{}, &NoSuchParameterError{Name: name}
	}

	kind, _, err := kern.SysctlFormat(oid)
	if err != nil {
		return ParamInfo{}, &IntrospectionError{Kind: ParamTypeQuery, Name: name, Err: err}
	}

	ctlType := platform.KindType(kind)

	t, err := typeOf(ctlType, name)
	if err != nil {
		return ParamInfo{}, err
	}

	info := ParamInfo{
		Name:    name,
		Type:    t,
		Mutable: !platform.KindTunable(kind),
		Size:    t.Width(),
	}

	switch ctlType {
	case platform.CtlTypeString:
		value, err := kern.SysctlValue(oid)
		if err != nil {
			return ParamInfo{}, &IntrospectionError{Kind: StringLengthQuery, Name: name, Err: err}
		}

		length := platform.GoString(value)
		info.Size, err = strconv.Atoi(strings.TrimSpace(length))
		if err != nil {
			return ParamInfo{}, &LengthNaNError{Value: length}
		}
	case platform.CtlTypeStruct:
		value, err := kern.SysctlValue(oid)
		if err != nil {
			return ParamInfo{}, &IntrospectionError{Kind: StructLengthQuery, Name: name, Err: err}
		}

		if len(value) < longSize {
			return ParamInfo{}, &IntrospectionError{
				Kind: StructLengthQuery,
				Name: name,
				Err:  fmt.Errorf("got %d bytes: %w", len(value), platform.ErrUnexpectedReturn),
			}
		}

		size, err := Decode(TypeUlong, value[:longSize])
		if err != nil {
			return ParamInfo{}, &IntrospectionError{Kind: StructLengthQuery, Name: name, Err: err}
		}
		info.Size = int(size.(Ulong))
	}

	return info, nil
}

// bufferSize returns the size of the buffer jail_get(2) needs to return the
// value of p. Address lists hold up to security.jail.jail_max_af_ips
// addresses.
func bufferSize(p ParamInfo) (int, error) {
	if p.Type != TypeIPv4Addrs && p.Type != TypeIPv6Addrs {
		return p.Size, nil
	}

	maxIPs, err := platform.SysctlUint(kern, platform.JailMaxAFIPs)
	if err != nil {
		return 0, &IntrospectionError{Kind: MaxAFIPsQuery, Name: p.Name, Err: err}
	}

	return p.Size * int(maxIPs), nil
}

// GetParam returns the value of the named parameter of the jail jid.
func GetParam(jid int, name string) (Value, error) {
	info, err := Describe(name)
	if err != nil {
		return nil, err
	}

	size, err := bufferSize(info)
	if err != nil {
		return nil, err
	}

	nameParam := platform.JailParam{Name: name, Value: make([]byte, size)}

	slog.Debug("get jail parameter", "jid", jid, "param", name, "size", size)

	if _, err := kern.JailGet([]platform.JailParam{
		platform.Int32Param("jid", int32(jid)),
		nameParam,
	}, 0); err != nil {
		return nil, kernelError("jail_get", err)
	}

	return Decode(info.Type, nameParam.Value)
}

// SetParam sets the named parameter of the jail jid to v. The type of v
// must be the type the kernel reports for the parameter.
func SetParam(jid int, name string, v Value) error {
	info, err := Describe(name)
	if err != nil {
		return err
	}

	if !info.Mutable {
		return &TunableError{Name: name}
	}

	p, err := encodeParam(info, v)
	if err != nil {
		return err
	}

	slog.Debug("set jail parameter", "jid", jid, "param", name, "value", v.String())

	if _, err := kern.JailSet([]platform.JailParam{
		platform.Int32Param("jid", int32(jid)),
		p,
	}, platform.JailUpdate); err != nil {
		return kernelError("jail_set", err)
	}

	return nil
}

// encodeParam checks v against the kernel's type for the parameter and
// encodes it.
func encodeParam(info ParamInfo, v Value) (platform.JailParam, error) {
	if v == nil || v.Type() != info.Type {
		got := Type(0)
		if v != nil {
			got = v.Type()
		}

		return platform.JailParam{}, &UnexpectedTypeError{
			Name:     info.Name,
			Expected: info.Type,
			Got:      got,
		}
	}

	b, err := Encode(v)
	if err != nil {
		return platform.JailParam{}, fmt.Errorf("encode %s: %w", info.Name, err)
	}

	return platform.JailParam{Name: info.Name, Value: b}, nil
}

// excludedParams are left out of GetAllParams. They are either per-instance
// bookkeeping or have dedicated accessors on Running.
var excludedParams = []string{
	"jid",
	"dying",
	"parent",
	"children.cur",
	"cpuset.id",
	"name",
	"host.hostname",
	"path",
	"ip4.addr",
	"ip6.addr",
}

// ParamNames returns the name of every jail parameter known to the kernel,
// in kernel order.
func ParamNames() ([]string, error) {
	leaves, err := kern.SysctlWalk(platform.JailParamPrefix)
	if err != nil {
		return nil, &OSError{Op: "sysctl", Err: err}
	}

	names := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		name := strings.TrimPrefix(leaf, platform.JailParamPrefix)
		if name == "" || strings.HasSuffix(name, ".") {
			continue
		}

		names = append(names, name)
	}

	return names, nil
}

// GetAllParams returns every parameter of the jail jid except those that
// are bookkeeping or covered by Running's accessors. The first parameter
// that cannot be read aborts the enumeration.
func GetAllParams(jid int) (Params, error) {
	names, err := ParamNames()
	if err != nil {
		return nil, err
	}

	params := make(Params)
	for _, name := range names {
		if slices.Contains(excludedParams, name) {
			continue
		}

		v, err := GetParam(jid, name)
		if err != nil {
			return nil, fmt.Errorf("get parameter %s: %w", name, err)
		}

		params[name] = v
	}

	return params, nil
}

// Params is a set of parameter values keyed by name.
type Params map[string]Value

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Equal reports whether p and other hold the same parameters.
func (p Params) Equal(other Params) bool {
	return maps.EqualFunc(p, other, Equal)
}

// isMissingParam reports whether err was caused by the kernel not knowing a
// parameter, e.g. ip6.addr on a kernel built without INET6.
func isMissingParam(err error) bool {
	var nsp *NoSuchParameterError
	return errors.As(err, &nsp)
}
