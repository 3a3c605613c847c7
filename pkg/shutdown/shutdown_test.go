package shutdown_test

import (
	"errors"
	"testing"
	"time"

	"github.com/herohde/ccmatch/pkg/shutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChild struct {
	killed bool
	err    error
}

func (f *fakeChild) Kill() error {
	f.killed = true
	return f.err
}

func TestStopIsIdempotentAndCancelsContext(t *testing.T) {
	m := shutdown.New()
	defer m.Close()

	assert.False(t, m.Stopped())

	m.Stop()
	m.Stop() // must not panic or double-close the context

	assert.True(t, m.Stopped())
	select {
	case <-m.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("Context not canceled after Stop")
	}
}

func TestKillAllKillsRegisteredChildrenAndUnregisterRemoves(t *testing.T) {
	m := shutdown.New()
	defer m.Close()

	a := &fakeChild{}
	b := &fakeChild{err: errors.New("already exited")}

	unregisterA := m.Register(a)
	_ = m.Register(b)
	unregisterA()

	m.KillAll()

	assert.False(t, a.killed, "unregistered child must not be killed")
	assert.True(t, b.killed)
}

func TestNewInstallsIndependentSignalHandlers(t *testing.T) {
	m1 := shutdown.New()
	defer m1.Close()
	m2 := shutdown.New()
	defer m2.Close()

	m1.Stop()
	assert.True(t, m1.Stopped())
	require.False(t, m2.Stopped())
}
