package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrSessionExists    = errors.New("transcription already running for this meeting")
	ErrSessionNotFound  = errors.New("no transcription running for this meeting")
	ErrInvalidMeetingID = errors.New("invalid meeting id")
)

var meetingIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// TranscriptionProvider starts and stops transcription on the conferencing
// side. Text comes back through TranscriptionManager.Append.
type TranscriptionProvider interface {
	StartTranscription(ctx context.Context, roomID, webhookURL string) error
	StopTranscription(ctx context.Context, roomID string) error
}

// TranscriptionManager supervises one writer goroutine per meeting. Each
// writer is the only owner of its transcript file.
type TranscriptionManager struct {
	dir        string
	webhookURL string
	provider   TranscriptionProvider
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*transcriptSession
}

type transcriptSession struct {
	meetingID string
	path      string
	lines     chan string
	stopped   chan struct{}
	done      chan struct{}

	// mu is held for reading by senders and for writing while closing
	// stopped, so no send can land after the writer's final drain.
	mu       sync.RWMutex
	stopOnce sync.Once
}

func NewTranscriptionManager(dir, webhookURL string, provider TranscriptionProvider, logger *zap.Logger) *TranscriptionManager {
	return &TranscriptionManager{
		dir:        dir,
		webhookURL: webhookURL,
		provider:   provider,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*transcriptSession),
	}
}

// Start opens the transcript file, starts its writer and asks the provider
// to begin transcription. It returns the transcript path.
func (m *TranscriptionManager) Start(ctx context.Context, meetingID string) (string, error) {
	if !meetingIDPattern.MatchString(meetingID) {
		return "", ErrInvalidMeetingID
	}

	m.mu.Lock()
	if _, ok := m.sessions[meetingID]; ok {
		m.mu.Unlock()
		return "", ErrSessionExists
	}
	s, err := m.open(meetingID)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.sessions[meetingID] = s
	m.mu.Unlock()

	if err := m.provider.StartTranscription(ctx, meetingID, m.webhookURL); err != nil {
		m.remove(meetingID)
		s.stop()
		return "", fmt.Errorf("start provider transcription: %w", err)
	}
	m.logger.Info("transcription started", zap.String("meetingId", meetingID), zap.String("path", s.path))
	return s.path, nil
}

func (m *TranscriptionManager) open(meetingID string) (*transcriptSession, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcripts dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.txt", meetingID, m.now().Format("20060102_150405"))
	path := filepath.Join(m.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}

	s := &transcriptSession{
		meetingID: meetingID,
		path:      path,
		lines:     make(chan string, 64),
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	go m.write(s, f)
	return s, nil
}

func (m *TranscriptionManager) write(s *transcriptSession, f *os.File) {
	defer close(s.done)
	w := bufio.NewWriter(f)
	put := func(line string) {
		fmt.Fprintf(w, "[%s] %s\n", m.now().Format("15:04:05"), line)
		if err := w.Flush(); err != nil {
			m.logger.Error("transcript write failed", zap.String("meetingId", s.meetingID), zap.Error(err))
		}
	}

	put(fmt.Sprintf("=== Transcript for meeting %s ===", s.meetingID))
	for {
		select {
		case line := <-s.lines:
			put(line)
		case <-s.stopped:
			for {
				select {
				case line := <-s.lines:
					put(line)
				default:
					put("=== Transcription ended ===")
					if err := f.Close(); err != nil {
						m.logger.Error("transcript close failed", zap.String("meetingId", s.meetingID), zap.Error(err))
					}
					return
				}
			}
		}
	}
}

func (s *transcriptSession) send(line string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	select {
	case <-s.stopped:
		return false
	default:
	}
	s.lines <- line
	return true
}

func (s *transcriptSession) stop() {
	s.mu.Lock()
	s.stopOnce.Do(func() { close(s.stopped) })
	s.mu.Unlock()
	<-s.done
}

func (m *TranscriptionManager) remove(meetingID string) *transcriptSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[meetingID]
	if !ok {
		return nil
	}
	delete(m.sessions, meetingID)
	return s
}

// Append queues a line for the meeting's transcript. A nil error means the
// line will be written before the closing marker.
func (m *TranscriptionManager) Append(meetingID, line string) error {
	m.mu.Lock()
	s, ok := m.sessions[meetingID]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if !s.send(line) {
		return ErrSessionNotFound
	}
	return nil
}

// Stop ends the provider transcription, writes the closing marker and
// returns the transcript path.
func (m *TranscriptionManager) Stop(ctx context.Context, meetingID string) (string, error) {
	s := m.remove(meetingID)
	if s == nil {
		return "", ErrSessionNotFound
	}
	if err := m.provider.StopTranscription(ctx, meetingID); err != nil {
		m.logger.Warn("provider stop failed", zap.String("meetingId", meetingID), zap.Error(err))
	}
	s.stop()
	m.logger.Info("transcription stopped", zap.String("meetingId", meetingID), zap.String("path", s.path))
	return s.path, nil
}

// Active returns the ids of meetings being transcribed.
func (m *TranscriptionManager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops every running session.
func (m *TranscriptionManager) Shutdown(ctx context.Context) {
	for _, id := range m.Active() {
		if _, err := m.Stop(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.logger.Warn("transcription shutdown", zap.String("meetingId", id), zap.Error(err))
		}
	}
}
