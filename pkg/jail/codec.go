package jail

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"

	"github.com/nixpig/jailer/internal/platform"
)

// Encode returns the byte representation of v passed to jail_set(2).
// Scalars are little-endian, strings are NUL-terminated and addresses are
// in network byte order.
func Encode(v Value) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrSerialize)
	}

	switch v := v.(type) {
	case String:
		b, err := platform.CString(string(v))
		if err != nil {
			return nil, &CStringError{Value: string(v)}
		}
		return b, nil
	case IPv4Addrs:
		return encodeAddrs(v, TypeIPv4Addrs)
	case IPv6Addrs:
		return encodeAddrs(v, TypeIPv6Addrs)
	}

	b := make([]byte, v.Type().Width())

	switch v := v.(type) {
	case Int:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case Uint:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case Long:
		putUint(b, uint64(v))
	case Ulong:
		putUint(b, uint64(v))
	case S8:
		b[0] = byte(v)
	case U8:
		b[0] = byte(v)
	case S16:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case U16:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case S32:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case U32:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case S64:
		binary.LittleEndian.PutUint64(b, uint64(v))
	case U64:
		binary.LittleEndian.PutUint64(b, uint64(v))
	default:
		return nil, fmt.Errorf("%w: unknown value %T", ErrSerialize, v)
	}

	return b, nil
}

func putUint(b []byte, n uint64) {
	if len(b) == 8 {
		binary.LittleEndian.PutUint64(b, n)
		return
	}

	binary.LittleEndian.PutUint32(b, uint32(n))
}

func encodeAddrs(addrs []netip.Addr, t Type) ([]byte, error) {
	width := t.Width()
	if len(addrs) > math.MaxInt32/width {
		return nil, fmt.Errorf("%w: %d addresses", ErrSerialize, len(addrs))
	}

	b := make([]byte, 0, len(addrs)*width)
	for _, a := range addrs {
		switch {
		case a.Zone() != "":
			return nil, fmt.Errorf("%w: zoned address %q", ErrSerialize, a)
		case t == TypeIPv4Addrs && a.Is4():
			a4 := a.As4()
			b = append(b, a4[:]...)
		case t == TypeIPv6Addrs && a.Is6():
			a16 := a.As16()
			b = append(b, a16[:]...)
		default:
			return nil, fmt.Errorf("%w: %q in %s", ErrSerialize, a, t)
		}
	}

	return b, nil
}

// Decode returns the Value of type t held in b, as written by
// jail_get(2). Unspecified addresses, which pad unused address slots, are
// dropped.
func Decode(t Type, b []byte) (Value, error) {
	switch t {
	case TypeString:
		return String(platform.GoString(b)), nil
	case TypeIPv4Addrs, TypeIPv6Addrs:
		return decodeAddrs(t, b)
	}

	width := t.Width()
	if width == 0 {
		return nil, fmt.Errorf("decode: unknown type %s", t)
	}

	if len(b) < width {
		return nil, fmt.Errorf(
			"decode %s: got %d bytes: %w",
			t, len(b), platform.ErrUnexpectedReturn,
		)
	}

	switch t {
	case TypeS8:
		return S8(b[0]), nil
	case TypeU8:
		return U8(b[0]), nil
	case TypeS16:
		return S16(binary.LittleEndian.Uint16(b)), nil
	case TypeU16:
		return U16(binary.LittleEndian.Uint16(b)), nil
	case TypeS32:
		return S32(binary.LittleEndian.Uint32(b)), nil
	case TypeU32:
		return U32(binary.LittleEndian.Uint32(b)), nil
	case TypeInt:
		return Int(binary.LittleEndian.Uint32(b)), nil
	case TypeUint:
		return Uint(binary.LittleEndian.Uint32(b)), nil
	case TypeS64:
		return S64(binary.LittleEndian.Uint64(b)), nil
	case TypeU64:
		return U64(binary.LittleEndian.Uint64(b)), nil
	case TypeLong:
		if width == 4 {
			return Long(int32(binary.LittleEndian.Uint32(b))), nil
		}
		return Long(binary.LittleEndian.Uint64(b)), nil
	case TypeUlong:
		if width == 4 {
			return Ulong(binary.LittleEndian.Uint32(b)), nil
		}
		return Ulong(binary.LittleEndian.Uint64(b)), nil
	}

	return nil, fmt.Errorf("decode: unknown type %s", t)
}

func decodeAddrs(t Type, b []byte) (Value, error) {
	width := t.Width()
	if len(b)%width != 0 {
		return nil, fmt.Errorf(
			"decode %s: %d bytes is not a multiple of %d: %w",
			t, len(b), width, platform.ErrUnexpectedReturn,
		)
	}

	addrs := []netip.Addr{}
	for off := 0; off < len(b); off += width {
		var a netip.Addr
		if t == TypeIPv4Addrs {
			a = netip.AddrFrom4([4]byte(b[off : off+4]))
		} else {
			a = netip.AddrFrom16([16]byte(b[off : off+16]))
		}

		if a.IsUnspecified() {
			continue
		}

		addrs = append(addrs, a)
	}

	if t == TypeIPv4Addrs {
		return IPv4Addrs(addrs), nil
	}

	return IPv6Addrs(addrs), nil
}
