package jail

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"gopkg.in/yaml.v3"
)

// Params are serialized with each value tagged by its type, so that they can
// be decoded without asking the kernel:
//
//	params:
//	  allow.raw_sockets:
//	    int: 1
//	  host.hostuuid:
//	    string: 00000000-0000-0000-0000-000000000000

func tagged(p Params) map[string]map[string]Value {
	m := make(map[string]map[string]Value, len(p))
	for name, v := range p {
		m[name] = map[string]Value{v.Type().String(): v}
	}

	return m
}

func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagged(p))
}

func (p Params) MarshalYAML() (any, error) {
	return tagged(p), nil
}

func (p *Params) UnmarshalJSON(b []byte) error {
	var m map[string]map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	params := make(Params, len(m))
	for name, tv := range m {
		if len(tv) != 1 {
			return fmt.Errorf("parameter %s: expected one type, got %d", name, len(tv))
		}

		for typeName, raw := range tv {
			v, err := decodeTagged(typeName, func(dst any) error {
				return json.Unmarshal(raw, dst)
			})
			if err != nil {
				return fmt.Errorf("parameter %s: %w", name, err)
			}
			params[name] = v
		}
	}

	*p = params
	return nil
}

func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]yaml.Node
	if err := node.Decode(&m); err != nil {
		return err
	}

	params := make(Params, len(m))
	for name, n := range m {
		if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
			return fmt.Errorf("parameter %s: expected a single type: value entry", name)
		}

		v, err := decodeTagged(n.Content[0].Value, n.Content[1].Decode)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		params[name] = v
	}

	*p = params
	return nil
}

// decodeTagged decodes a value of the named type using decode, which
// unmarshals the serialized value into its argument.
func decodeTagged(typeName string, decode func(any) error) (Value, error) {
	t, err := ParseType(typeName)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeString:
		var s string
		if err := decode(&s); err != nil {
			return nil, err
		}
		return String(s), nil
	case TypeIPv4Addrs, TypeIPv6Addrs:
		addrs := []netip.Addr{}
		if err := decode(&addrs); err != nil {
			return nil, err
		}
		for _, a := range addrs {
			if (t == TypeIPv4Addrs) != a.Is4() {
				return nil, fmt.Errorf("%s: wrong address family: %s", t, a)
			}
		}
		if t == TypeIPv4Addrs {
			return IPv4Addrs(addrs), nil
		}
		return IPv6Addrs(addrs), nil
	case TypeU8, TypeU16, TypeU32, TypeU64, TypeUint, TypeUlong:
		var n uint64
		if err := decode(&n); err != nil {
			return nil, err
		}
		if bits := t.Width() * 8; bits < 64 && n > 1<<bits-1 {
			return nil, fmt.Errorf("%s: %d out of range", t, n)
		}
		return uintValue(t, n), nil
	}

	var n int64
	if err := decode(&n); err != nil {
		return nil, err
	}

	if bits := t.Width() * 8; bits < 64 {
		limit := int64(1) << (bits - 1)
		if n < -limit || n >= limit {
			return nil, fmt.Errorf("%s: %d out of range", t, n)
		}
	}

	return intValue(t, n), nil
}
