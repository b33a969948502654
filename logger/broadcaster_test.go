package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFansOut(t *testing.T) {
	var sink bytes.Buffer
	b := NewBroadcaster(&sink)

	ch := b.Subscribe()
	n, err := b.Write([]byte("analysis completed\n"))

	assert.NoError(t, err)
	assert.Equal(t, len("analysis completed\n"), n)
	assert.Equal(t, "analysis completed\n", sink.String())
	assert.Equal(t, "analysis completed\n", <-ch)
}

func TestBroadcasterDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroadcaster(nil)
	ch := b.Subscribe()

	for i := 0; i < cap(ch)+10; i++ {
		b.Write([]byte("line"))
	}
	assert.Len(t, ch, cap(ch))
}

func TestBroadcasterUnsubscribeClosesOnce(t *testing.T) {
	b := NewBroadcaster(nil)
	ch := b.Subscribe()

	b.Unsubscribe(ch)
	b.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	b.Write([]byte("after unsubscribe"))
}

func TestBroadcasterSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	b := NewBroadcaster(&first)

	b.Write([]byte("a"))
	b.SetOutput(&second)
	b.Write([]byte("b"))

	assert.Equal(t, "a", first.String())
	assert.Equal(t, "b", second.String())
}

func currentLevel(t *testing.T) log.Level {
	t.Helper()
	l, ok := log.Log.(*log.Logger)
	require.True(t, ok)
	return l.Level
}

func TestSetupLevels(t *testing.T) {
	var sink bytes.Buffer
	Instance.SetOutput(&sink)
	t.Cleanup(func() {
		Instance.SetOutput(os.Stdout)
		log.SetLevel(log.InfoLevel)
	})

	Setup("debug")
	assert.Equal(t, log.DebugLevel, currentLevel(t))
	assert.Empty(t, sink.String())

	Setup("bogus")
	assert.Equal(t, log.InfoLevel, currentLevel(t))
	assert.Contains(t, sink.String(), "unknown log level, using info")
	assert.Contains(t, sink.String(), "bogus")
}
