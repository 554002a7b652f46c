package jail

import (
	"fmt"
	"net/netip"
	"path/filepath"
	"slices"
	"strings"

	"github.com/opencontainers/runtime-spec/specs-go"
)

const (
	// AnnotationParamPrefix prefixes annotations that set jail parameters,
	// e.g. org.freebsd.jail.param.allow.raw_sockets=1.
	AnnotationParamPrefix = "org.freebsd.jail.param."
	// AnnotationName names the jail.
	AnnotationName = "org.freebsd.jail.name"
)

// FromOCISpec returns the configuration of a jail for an OCI runtime spec
// whose bundle is at bundle. The root path is resolved against bundle, the
// hostname is taken from the spec and parameters from annotations. Each
// parameter annotation is parsed according to the type the kernel reports
// for it, and the address list parameters are added to the jail's IPs.
func FromOCISpec(spec *specs.Spec, bundle string) (Stopped, error) {
	if spec.Root == nil || spec.Root.Path == "" {
		return Stopped{}, ErrPathNotGiven
	}

	path := spec.Root.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(bundle, path)
	}

	s := NewStopped(path).WithHostname(spec.Hostname)
	s.Name = spec.Annotations[AnnotationName]

	keys := make([]string, 0, len(spec.Annotations))
	for k := range spec.Annotations {
		if strings.HasPrefix(k, AnnotationParamPrefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		name := strings.TrimPrefix(k, AnnotationParamPrefix)
		raw := spec.Annotations[k]

		switch name {
		case "name":
			s.Name = raw
			continue
		case "host.hostname":
			s.Hostname = raw
			continue
		}

		info, err := Describe(name)
		if err != nil {
			return Stopped{}, fmt.Errorf("annotation %s: %w", k, err)
		}

		v, err := ParseValue(info.Type, raw)
		if err != nil {
			return Stopped{}, fmt.Errorf("annotation %s: %w", k, err)
		}

		switch v := v.(type) {
		case IPv4Addrs:
			s = s.withIPs(v)
		case IPv6Addrs:
			s = s.withIPs(v)
		default:
			s = s.WithParam(name, v)
		}
	}

	return s, nil
}

func (s Stopped) withIPs(ips []netip.Addr) Stopped {
	for _, ip := range ips {
		s = s.WithIP(ip)
	}

	return s
}
