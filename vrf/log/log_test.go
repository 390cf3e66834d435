package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zapcore"
)

func TestResetLogger(t *testing.T) {
	defer InitLogger()

	home := t.TempDir()
	ResetLogger(home)
	require.Equal(t, filepath.Join(home, "logs"), Dir())

	// debug entries reach the file even when the console is at info
	SetDebug(false)
	Debugf("request id %d", 7)
	Sync()

	path := filepath.Join(Dir(), filepath.Base(os.Args[0])+".log")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var found bool
	gjson.ForEachLine(string(data), func(line gjson.Result) bool {
		if line.Get("msg").String() == "request id 7" {
			found = true
			require.Equal(t, "debug", line.Get("level").String())
			return false
		}
		return true
	})
	require.True(t, found)
}

func TestSetDebug(t *testing.T) {
	defer SetDebug(false)

	SetDebug(true)
	require.True(t, customLog.level.Enabled(zapcore.DebugLevel))

	SetDebug(false)
	require.False(t, customLog.level.Enabled(zapcore.DebugLevel))
}
