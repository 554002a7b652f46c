package jail

import (
	"fmt"
	"strconv"

	"github.com/nixpig/jailer/internal/platform"
)

// Type is the type of a jail parameter value.
type Type int

const (
	TypeString Type = iota + 1
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeS8
	TypeS16
	TypeS32
	TypeS64
	TypeInt
	TypeLong
	TypeUint
	TypeUlong
	TypeIPv4Addrs
	TypeIPv6Addrs
)

var typeNames = map[Type]string{
	TypeString:    "string",
	TypeU8:        "u8",
	TypeU16:       "u16",
	TypeU32:       "u32",
	TypeU64:       "u64",
	TypeS8:        "s8",
	TypeS16:       "s16",
	TypeS32:       "s32",
	TypeS64:       "s64",
	TypeInt:       "int",
	TypeLong:      "long",
	TypeUint:      "uint",
	TypeUlong:     "ulong",
	TypeIPv4Addrs: "ipv4addrs",
	TypeIPv6Addrs: "ipv6addrs",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType returns the Type with the given name, as produced by
// Type.String.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown parameter type %q", s)
}

// CtlType returns the sysctl type the kernel reports for parameters of
// type t. Both address list types are reported as opaque structs.
func (t Type) CtlType() platform.CtlType {
	switch t {
	case TypeString:
		return platform.CtlTypeString
	case TypeU8:
		return platform.CtlTypeU8
	case TypeU16:
		return platform.CtlTypeU16
	case TypeU32:
		return platform.CtlTypeU32
	case TypeU64:
		return platform.CtlTypeU64
	case TypeS8:
		return platform.CtlTypeS8
	case TypeS16:
		return platform.CtlTypeS16
	case TypeS32:
		return platform.CtlTypeS32
	case TypeS64:
		return platform.CtlTypeS64
	case TypeInt:
		return platform.CtlTypeInt
	case TypeLong:
		return platform.CtlTypeLong
	case TypeUint:
		return platform.CtlTypeUint
	case TypeUlong:
		return platform.CtlTypeUlong
	case TypeIPv4Addrs, TypeIPv6Addrs:
		return platform.CtlTypeStruct
	}

	return 0
}

// longSize is the width of a C long on the running platform.
const longSize = strconv.IntSize / 8

// Width returns the encoded size of a single value of type t, or zero for
// strings, whose size is reported per parameter by the kernel.
func (t Type) Width() int {
	switch t {
	case TypeU8, TypeS8:
		return 1
	case TypeU16, TypeS16:
		return 2
	case TypeU32, TypeS32, TypeInt, TypeUint:
		return 4
	case TypeU64, TypeS64:
		return 8
	case TypeLong, TypeUlong:
		return longSize
	case TypeIPv4Addrs:
		return 4
	case TypeIPv6Addrs:
		return 16
	}

	return 0
}

// typeOf resolves the kernel's sysctl type for parameter name to a Type.
// Struct parameters are only supported for the two address lists.
func typeOf(ct platform.CtlType, name string) (Type, error) {
	switch ct {
	case platform.CtlTypeString:
		return TypeString, nil
	case platform.CtlTypeU8:
		return TypeU8, nil
	case platform.CtlTypeU16:
		return TypeU16, nil
	case platform.CtlTypeU32:
		return TypeU32, nil
	case platform.CtlTypeU64:
		return TypeU64, nil
	case platform.CtlTypeS8:
		return TypeS8, nil
	case platform.CtlTypeS16:
		return TypeS16, nil
	case platform.CtlTypeS32:
		return TypeS32, nil
	case platform.CtlTypeS64:
		return TypeS64, nil
	case platform.CtlTypeInt:
		return TypeInt, nil
	case platform.CtlTypeLong:
		return TypeLong, nil
	case platform.CtlTypeUint:
		return TypeUint, nil
	case platform.CtlTypeUlong:
		return TypeUlong, nil
	case platform.CtlTypeStruct:
		switch name {
		case "ip4.addr":
			return TypeIPv4Addrs, nil
		case "ip6.addr":
			return TypeIPv6Addrs, nil
		}
	}

	return 0, &TypeUnsupportedError{Kind: ct}
}
