package platform

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// CtlType is the type of a sysctl node, taken from the low bits of its kind
// word.
type CtlType uint32

// Sysctl types as defined in sys/sysctl.h.
const (
	CtlTypeNode   CtlType = 1
	CtlTypeInt    CtlType = 2
	CtlTypeString CtlType = 3
	CtlTypeS64    CtlType = 4
	CtlTypeStruct CtlType = 5
	CtlTypeUint   CtlType = 6
	CtlTypeLong   CtlType = 7
	CtlTypeUlong  CtlType = 8
	CtlTypeU64    CtlType = 9
	CtlTypeU8     CtlType = 0xa
	CtlTypeU16    CtlType = 0xb
	CtlTypeS8     CtlType = 0xc
	CtlTypeS16    CtlType = 0xd
	CtlTypeS32    CtlType = 0xe
	CtlTypeU32    CtlType = 0xf
)

const (
	ctlTypeMask = 0xf

	// CtlFlagTun marks a sysctl as a loader tunable. For jail parameters it
	// means the value can only be given when the jail is created.
	CtlFlagTun = 0x00080000
)

// JailParamPrefix is the root of the sysctl tree that describes jail
// parameters.
const JailParamPrefix = "security.jail.param."

// JailMaxAFIPs names the sysctl holding the maximum number of addresses per
// family a jail may be given.
const JailMaxAFIPs = "security.jail.jail_max_af_ips"

var ctlTypeNames = map[CtlType]string{
	CtlTypeNode:   "node",
	CtlTypeInt:    "int",
	CtlTypeString: "string",
	CtlTypeS64:    "int64_t",
	CtlTypeStruct: "opaque",
	CtlTypeUint:   "uint",
	CtlTypeLong:   "long",
	CtlTypeUlong:  "ulong",
	CtlTypeU64:    "uint64_t",
	CtlTypeU8:     "uint8_t",
	CtlTypeU16:    "uint16_t",
	CtlTypeS8:     "int8_t",
	CtlTypeS16:    "int16_t",
	CtlTypeS32:    "int32_t",
	CtlTypeU32:    "uint32_t",
}

func (t CtlType) String() string {
	if name, ok := ctlTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("CtlType(%d)", uint32(t))
}

// KindType extracts the CtlType from a sysctl kind word.
func KindType(kind uint32) CtlType {
	return CtlType(kind & ctlTypeMask)
}

// KindTunable reports whether a sysctl kind word carries CtlFlagTun.
func KindTunable(kind uint32) bool {
	return kind&CtlFlagTun != 0
}

// sysctlHasPrefix reports whether name is below prefix in the sysctl tree.
func sysctlHasPrefix(name, prefix string) bool {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}

	return strings.HasPrefix(name, prefix)
}

// SysctlReader is the subset of Kernel needed to read a sysctl by name.
type SysctlReader interface {
	SysctlLookup(name string) ([]int32, error)
	SysctlValue(oid []int32) ([]byte, error)
}

// SysctlUint reads the named unsigned integer sysctl. The width is taken from
// the size of the returned value, so booleans, ints and longs all decode.
func SysctlUint(r SysctlReader, name string) (uint64, error) {
	oid, err := r.SysctlLookup(name)
	if err != nil {
		return 0, fmt.Errorf("lookup sysctl %s: %w", name, err)
	}

	b, err := r.SysctlValue(oid)
	if err != nil {
		return 0, fmt.Errorf("read sysctl %s: %w", name, err)
	}

	return DecodeUint(b)
}

// DecodeUint decodes a native-endian unsigned integer of 1, 2, 4 or 8 bytes.
func DecodeUint(b []byte) (uint64, error) {
	switch len(b) {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.NativeEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.NativeEndian.Uint32(b)), nil
	case 8:
		return binary.NativeEndian.Uint64(b), nil
	}

	return 0, fmt.Errorf("decode %d byte integer: %w", len(b), ErrUnexpectedReturn)
}
