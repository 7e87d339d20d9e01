package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	mu       sync.Mutex
	started  []string
	stopped  []string
	startErr error
}

func (p *fakeProvider) StartTranscription(_ context.Context, roomID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startErr != nil {
		return p.startErr
	}
	p.started = append(p.started, roomID)
	return nil
}

func (p *fakeProvider) StopTranscription(_ context.Context, roomID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = append(p.stopped, roomID)
	return nil
}

func newTestManager(t *testing.T) (*TranscriptionManager, *fakeProvider) {
	t.Helper()
	p := &fakeProvider{}
	return NewTranscriptionManager(t.TempDir(), "", p, zap.NewNop()), p
}

func TestTranscription_StartAppendStop(t *testing.T) {
	m, p := newTestManager(t)
	ctx := context.Background()

	path, err := m.Start(ctx, "abcd-1234")
	require.NoError(t, err)
	assert.Contains(t, path, "abcd-1234_")

	require.NoError(t, m.Append("abcd-1234", "Aarav: I have had a fever since Monday"))
	require.NoError(t, m.Append("abcd-1234", "Dr. Sharma: Any cough?"))

	stoppedPath, err := m.Stop(ctx, "abcd-1234")
	require.NoError(t, err)
	assert.Equal(t, path, stoppedPath)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "=== Transcript for meeting abcd-1234 ===")
	assert.Contains(t, lines[1], "Aarav: I have had a fever since Monday")
	assert.Contains(t, lines[2], "Dr. Sharma: Any cough?")
	assert.Contains(t, lines[3], "=== Transcription ended ===")
	for _, l := range lines {
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] `, l)
	}

	assert.Equal(t, []string{"abcd-1234"}, p.started)
	assert.Equal(t, []string{"abcd-1234"}, p.stopped)
	assert.Empty(t, m.Active())
}

func TestTranscription_Errors(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Start(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidMeetingID)

	_, err = m.Start(ctx, "room-1")
	require.NoError(t, err)
	_, err = m.Start(ctx, "room-1")
	assert.ErrorIs(t, err, ErrSessionExists)

	_, err = m.Stop(ctx, "room-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Append("room-2", "hi"), ErrSessionNotFound)

	_, err = m.Stop(ctx, "room-1")
	require.NoError(t, err)
	assert.ErrorIs(t, m.Append("room-1", "late line"), ErrSessionNotFound)
}

func TestTranscription_ProviderFailureReleasesSession(t *testing.T) {
	m, p := newTestManager(t)
	p.startErr = errors.New("provider down")

	_, err := m.Start(context.Background(), "room-1")
	require.Error(t, err)
	assert.Empty(t, m.Active())

	p.startErr = nil
	_, err = m.Start(context.Background(), "room-1")
	assert.NoError(t, err)
}

func TestTranscription_ConcurrentSessions(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("room-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Start(ctx, id)
			assert.NoError(t, err)
			for j := 0; j < 20; j++ {
				assert.NoError(t, m.Append(id, fmt.Sprintf("line %d", j)))
			}
			path, err := m.Stop(ctx, id)
			assert.NoError(t, err)
			raw, err := os.ReadFile(path)
			assert.NoError(t, err)
			assert.Equal(t, 22, strings.Count(string(raw), "\n"))
		}()
	}
	wg.Wait()
	assert.Empty(t, m.Active())
}

func TestTranscription_Shutdown(t *testing.T) {
	m, p := newTestManager(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := m.Start(ctx, id)
		require.NoError(t, err)
	}
	m.Shutdown(ctx)
	assert.Empty(t, m.Active())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, p.stopped)
}

func TestTranscription_AcceptedLinesSurviveConcurrentStop(t *testing.T) {
	for round := 0; round < 20; round++ {
		m, _ := newTestManager(t)
		ctx := context.Background()
		path, err := m.Start(ctx, "room-1")
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; ; j++ {
					if err := m.Append("room-1", fmt.Sprintf("line %d", j)); err != nil {
						assert.ErrorIs(t, err, ErrSessionNotFound)
						return
					}
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}

		_, err = m.Stop(ctx, "room-1")
		require.NoError(t, err)
		wg.Wait()

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		assert.Len(t, lines, accepted+2, "every accepted line is written")
		assert.Contains(t, lines[len(lines)-1], "=== Transcription ended ===")
	}
}
