package logs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]int{
		"trace":   LevelTrace,
		"DEBUG":   LevelDebug,
		"verbose": LevelVerbose,
		"":        LevelInfo,
		"info":    LevelInfo,
		"warning": LevelWarning,
		"warn":    LevelWarning,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitSetsLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	require.NoError(t, Init("debug", true))
	assert.Equal(t, LevelDebug, Level())
	assert.NotNil(t, L())

	assert.Error(t, Init("nope", false))
	// 失败时保留原级别
	assert.Equal(t, LevelDebug, Level())
}

func TestConcurrentLevelAndLogger(t *testing.T) {
	defer SetLevel(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			SetLevel(i % (LevelError + 1))
			assert.NoError(t, Init("error", false))
		}(i)
		go func(i int) {
			defer wg.Done()
			Debug("worker %d", i)
			Info("worker %d", i)
			_ = L()
		}(i)
	}
	wg.Wait()

	SetLevel(LevelWarning)
	assert.Equal(t, LevelWarning, Level())
}
