package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/pong/pong"
	"github.com/milk9111/pong/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishKeepsLatest(t *testing.T) {
	sess, err := pong.NewSession(pong.SessionOptions{Scene: "pong", CPU: []pong.Side{pong.Left, pong.Right}, Seed: 5})
	require.NoError(t, err)

	states := make(chan state, 1)
	publish(states, sess)
	require.NoError(t, sess.Match.Step(1.0/60))
	publish(states, sess)

	require.Len(t, states, 1)
	st := <-states
	assert.Equal(t, uint64(1), st.world.Step)
	require.NotNil(t, st.match)
	assert.Equal(t, sess.Match.ID, st.match.Match)
}

func TestStateFields(t *testing.T) {
	sess, err := pong.NewSession(pong.SessionOptions{Scene: "box"})
	require.NoError(t, err)

	fields := stateFields(state{world: sess.Snapshot()})
	require.Len(t, fields, 2)
	assert.Equal(t, "step", fields[0].Key)
	assert.Equal(t, "digest", fields[1].Key)
	assert.Len(t, fields[1].String, 16)
}

func TestRunSessionStopsWithContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	rebuild, err := runSession(ctx, config{
		session: pong.SessionOptions{Scene: "pong", CPU: []pong.Side{pong.Left, pong.Right}, Seed: 9},
		tick:    2 * time.Millisecond,
		report:  20 * time.Millisecond,
	}, nil, zap.New(core))
	require.NoError(t, err)
	assert.False(t, rebuild)

	finished := logs.FilterMessage("session finished").All()
	require.Len(t, finished, 1)
	assert.Positive(t, finished[0].ContextMap()["steps"])
	assert.NotEmpty(t, logs.FilterMessage("state").All())
}

func TestRunSessionRejectsBadTick(t *testing.T) {
	_, err := runSession(context.Background(), config{
		session: pong.SessionOptions{Scene: "box"},
	}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestRunSessionRebuildsOnlyForItsScene(t *testing.T) {
	dir := t.TempDir()
	watcher, err := scene.NewWatcher(dir)
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		rebuild bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		rebuild, err := runSession(ctx, config{
			session: pong.SessionOptions{Scene: "pong", CPU: []pong.Side{pong.Left, pong.Right}, Seed: 4},
			tick:    2 * time.Millisecond,
		}, watcher, zap.NewNop())
		done <- result{rebuild, err}
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "box.yaml"), []byte("name: box\n"), 0o644))
	select {
	case r := <-done:
		t.Fatalf("session ended after another scene changed: %+v", r)
	case <-time.After(400 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pong.yaml"), []byte("name: pong\n"), 0o644))
	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.True(t, r.rebuild)
	case <-ctx.Done():
		t.Fatal("session kept running after its scene changed")
	}
}
