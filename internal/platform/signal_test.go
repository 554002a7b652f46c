package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignal(t *testing.T) {
	scenarios := map[string]struct {
		sigName string
		signal  Signal
	}{
		"test signal full name": {
			sigName: "SIGINT",
			signal:  SIGINT,
		},
		"test signal shorthand name": {
			sigName: "TRAP",
			signal:  SIGTRAP,
		},
		"test signal lowercase name": {
			sigName: "sigkill",
			signal:  SIGKILL,
		},
		"test signal int name": {
			sigName: "9",
			signal:  SIGKILL,
		},
		"test freebsd numbering": {
			sigName: "30",
			signal:  SIGUSR1,
		},
		"test alias": {
			sigName: "IOT",
			signal:  SIGABRT,
		},
		"test unknown signal number": {
			sigName: "99",
			signal:  Signal(0),
		},
		"test invalid signal name": {
			sigName: "invalid",
			signal:  Signal(0),
		},
		"test empty signal name": {
			sigName: "",
			signal:  Signal(0),
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			assert.Equal(t, data.signal, ParseSignal(data.sigName))
		})
	}
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "SIGKILL", SIGKILL.String())
	assert.Equal(t, "SIGINFO", SIGINFO.String())
	assert.Equal(t, "SIG64", Signal(64).String())
}
