package gltfview

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfig_DeliversReloads(t *testing.T) {
	path := writeConfig(t, "[window]\nwidth = 640\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := WatchConfig(ctx, path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[window]\nwidth = 1024\n"), 0o644))

	// a truncate may be seen before the write lands, so wait for the value
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Window.Width == 1024 {
				cancel()
				for range updates {
				}
				return
			}
		case <-timeout:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchConfig_ClosesOnCancel(t *testing.T) {
	path := writeConfig(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	updates, err := WatchConfig(ctx, path, nil)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-updates:
		for ok {
			_, ok = <-updates
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	_, err := WatchConfig(context.Background(), "/nonexistent/dir/viewer.toml", nil)
	assert.Error(t, err)
}
