package jail

import (
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

// Value is a typed jail parameter value. It is implemented by the types in
// this file only.
type Value interface {
	Type() Type
	String() string
	isValue()
}

type (
	// Int is a C int.
	Int       int32
	// Long is a C long.
	Long      int64
	// Uint is a C unsigned int.
	Uint      uint32
	// Ulong is a C unsigned long.
	Ulong     uint64
	S8        int8
	S16       int16
	S32       int32
	S64       int64
	U8        uint8
	U16       uint16
	U32       uint32
	U64       uint64
	// String is a NUL-terminated string parameter.
	String    string
	// IPv4Addrs is the value of ip4.addr.
	IPv4Addrs []netip.Addr
	// IPv6Addrs is the value of ip6.addr.
	IPv6Addrs []netip.Addr
)

func (Int) Type() Type       { return TypeInt }
func (Long) Type() Type      { return TypeLong }
func (Uint) Type() Type      { return TypeUint }
func (Ulong) Type() Type     { return TypeUlong }
func (S8) Type() Type        { return TypeS8 }
func (S16) Type() Type       { return TypeS16 }
func (S32) Type() Type       { return TypeS32 }
func (S64) Type() Type       { return TypeS64 }
func (U8) Type() Type        { return TypeU8 }
func (U16) Type() Type       { return TypeU16 }
func (U32) Type() Type       { return TypeU32 }
func (U64) Type() Type       { return TypeU64 }
func (String) Type() Type    { return TypeString }
func (IPv4Addrs) Type() Type { return TypeIPv4Addrs }
func (IPv6Addrs) Type() Type { return TypeIPv6Addrs }

func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Long) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Uint) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v Ulong) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v S8) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v S16) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v S32) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v S64) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v U8) String() string     { return strconv.FormatUint(uint64(v), 10) }
func (v U16) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v U32) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v U64) String() string    { return strconv.FormatUint(uint64(v), 10) }
func (v String) String() string { return string(v) }

func (v IPv4Addrs) String() string { return joinAddrs(v) }
func (v IPv6Addrs) String() string { return joinAddrs(v) }

func (Int) isValue()       {}
func (Long) isValue()      {}
func (Uint) isValue()      {}
func (Ulong) isValue()     {}
func (S8) isValue()        {}
func (S16) isValue()       {}
func (S32) isValue()       {}
func (S64) isValue()       {}
func (U8) isValue()        {}
func (U16) isValue()       {}
func (U32) isValue()       {}
func (U64) isValue()       {}
func (String) isValue()    {}
func (IPv4Addrs) isValue() {}
func (IPv6Addrs) isValue() {}

func joinAddrs(addrs []netip.Addr) string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		s[i] = a.String()
	}

	return strings.Join(s, ",")
}

// Equal reports whether a and b are of the same type and hold the same
// value.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case IPv4Addrs:
		b, ok := b.(IPv4Addrs)
		return ok && slices.Equal(a, b)
	case IPv6Addrs:
		b, ok := b.(IPv6Addrs)
		return ok && slices.Equal(a, b)
	}

	return a == b
}

// UnpackString returns the string held by v.
func UnpackString(v Value) (string, error) {
	s, ok := v.(String)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrUnpack, v.Type())
	}

	return string(s), nil
}

// UnpackIPv4 returns the addresses held by an IPv4Addrs value.
func UnpackIPv4(v Value) ([]netip.Addr, error) {
	addrs, ok := v.(IPv4Addrs)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an IPv4 address list", ErrUnpack, v.Type())
	}

	return addrs, nil
}

// UnpackIPv6 returns the addresses held by an IPv6Addrs value.
func UnpackIPv6(v Value) ([]netip.Addr, error) {
	addrs, ok := v.(IPv6Addrs)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an IPv6 address list", ErrUnpack, v.Type())
	}

	return addrs, nil
}

// ParseValue parses s as a value of type t. Integers accept the prefixes
// understood by strconv.ParseInt with base 0. Address lists are comma
// separated, and an empty s gives an empty list.
func ParseValue(t Type, s string) (Value, error) {
	switch t {
	case TypeString:
		return String(s), nil
	case TypeIPv4Addrs, TypeIPv6Addrs:
		return parseAddrs(t, s)
	}

	switch t {
	case TypeU8, TypeU16, TypeU32, TypeU64, TypeUint, TypeUlong:
		n, err := strconv.ParseUint(s, 0, t.Width()*8)
		if err != nil {
			return nil, fmt.Errorf("parse %s value: %w", t, err)
		}
		return uintValue(t, n), nil
	case TypeS8, TypeS16, TypeS32, TypeS64, TypeInt, TypeLong:
		n, err := strconv.ParseInt(s, 0, t.Width()*8)
		if err != nil {
			return nil, fmt.Errorf("parse %s value: %w", t, err)
		}
		return intValue(t, n), nil
	}

	return nil, fmt.Errorf("parse value: unknown type %s", t)
}

func parseAddrs(t Type, s string) (Value, error) {
	addrs := []netip.Addr{}

	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		a, err := netip.ParseAddr(field)
		if err != nil {
			return nil, fmt.Errorf("parse %s value: %w", t, err)
		}

		if (t == TypeIPv4Addrs) != a.Is4() {
			return nil, fmt.Errorf("parse %s value: wrong address family: %s", t, a)
		}

		if a.Zone() != "" {
			return nil, fmt.Errorf("%w: zoned address %q", ErrSerialize, a)
		}

		addrs = append(addrs, a)
	}

	if t == TypeIPv4Addrs {
		return IPv4Addrs(addrs), nil
	}

	return IPv6Addrs(addrs), nil
}

// intValue returns n as a signed Value of type t. n must fit in t.
func intValue(t Type, n int64) Value {
	switch t {
	case TypeS8:
		return S8(n)
	case TypeS16:
		return S16(n)
	case TypeS32:
		return S32(n)
	case TypeS64:
		return S64(n)
	case TypeInt:
		return Int(n)
	case TypeLong:
		return Long(n)
	}

	return nil
}

// uintValue returns n as an unsigned Value of type t. n must fit in t.
func uintValue(t Type, n uint64) Value {
	switch t {
	case TypeU8:
		return U8(n)
	case TypeU16:
		return U16(n)
	case TypeU32:
		return U32(n)
	case TypeU64:
		return U64(n)
	case TypeUint:
		return Uint(n)
	case TypeUlong:
		return Ulong(n)
	}

	return nil
}
