package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindType(t *testing.T) {
	scenarios := map[string]struct {
		kind    uint32
		ctlType CtlType
		tunable bool
	}{
		"test read-write int": {
			kind:    0xc0000000 | uint32(CtlTypeInt),
			ctlType: CtlTypeInt,
			tunable: false,
		},
		"test tunable int": {
			kind:    0x80000000 | CtlFlagTun | uint32(CtlTypeInt),
			ctlType: CtlTypeInt,
			tunable: true,
		},
		"test string": {
			kind:    0xc0000000 | uint32(CtlTypeString),
			ctlType: CtlTypeString,
		},
		"test struct": {
			kind:    0xc0000000 | uint32(CtlTypeStruct),
			ctlType: CtlTypeStruct,
		},
		"test u32": {
			kind:    uint32(CtlTypeU32),
			ctlType: CtlTypeU32,
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, data.ctlType, KindType(data.kind))
			assert.Equal(t, data.tunable, KindTunable(data.kind))
		})
	}
}

func TestCtlTypeString(t *testing.T) {
	assert.Equal(t, "int", CtlTypeInt.String())
	assert.Equal(t, "opaque", CtlTypeStruct.String())
	assert.Equal(t, "CtlType(0)", CtlType(0).String())
}

func TestSysctlHasPrefix(t *testing.T) {
	scenarios := map[string]struct {
		name   string
		prefix string
		match  bool
	}{
		"test direct child": {
			name:   "security.jail.param.name",
			prefix: "security.jail.param.",
			match:  true,
		},
		"test nested child": {
			name:   "security.jail.param.allow.raw_sockets",
			prefix: "security.jail.param",
			match:  true,
		},
		"test sibling with shared prefix": {
			name:   "security.jail.parameters",
			prefix: "security.jail.param",
			match:  false,
		},
		"test outside tree": {
			name:   "security.jail.jail_max_af_ips",
			prefix: "security.jail.param.",
			match:  false,
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, data.match, sysctlHasPrefix(data.name, data.prefix))
		})
	}
}
