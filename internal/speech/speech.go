// Package speech streams transcribed speech segments for live mock answers.
package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	CodeNoSpeech   = "no-speech"
	CodeNotAllowed = "not-allowed"
	CodeAborted    = "aborted"

	MessageNotAllowed = "Microphone access denied. Please allow microphone access."
)

// ErrNoRecognizer is returned when recording has no speech source.
var ErrNoRecognizer = errors.New("no speech recognizer configured")

// Segment is a piece of recognized speech. Interim segments may be revised.
type Segment struct {
	Text  string
	Final bool
}

// Stream delivers segments until it is closed. Both channels are closed when
// the stream ends.
type Stream interface {
	Segments() <-chan Segment
	Errors() <-chan error
	Close() error
}

type Recognizer interface {
	Listen(ctx context.Context) (Stream, error)
}

// RecognitionError is an error reported by the recognizer itself.
type RecognitionError struct {
	Code    string
	Message string
}

func (e *RecognitionError) Error() string {
	if e.Message == "" {
		return "speech recognition: " + e.Code
	}
	return fmt.Sprintf("speech recognition: %s: %s", e.Code, e.Message)
}

func code(err error) string {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsTransient reports errors that are expected during continuous recognition.
func IsTransient(err error) bool {
	c := code(err)
	return c == CodeNoSpeech || c == CodeAborted
}

func IsNotAllowed(err error) bool {
	return code(err) == CodeNotAllowed
}

// stream is the channel plumbing shared by recognizers.
type stream struct {
	segments chan Segment
	errs     chan error
	done     chan struct{}
	once     sync.Once
	stop     func()
}

func newStream(stop func()) *stream {
	return &stream{
		segments: make(chan Segment, 16),
		errs:     make(chan error, 4),
		done:     make(chan struct{}),
		stop:     stop,
	}
}

func (s *stream) Segments() <-chan Segment { return s.segments }
func (s *stream) Errors() <-chan error { return s.errs }

func (s *stream) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
	return nil
}

func (s *stream) send(seg Segment) bool {
	select {
	case s.segments <- seg:
		return true
	case <-s.done:
		return false
	}
}

func (s *stream) fail(err error) {
	select {
	case s.errs <- err:
	case <-s.done:
	}
}

func (s *stream) finish() {
	close(s.segments)
	close(s.errs)
}

// Lines treats each line read from r as a final segment. A blank line or EOF
// ends the current stream, so one reader can serve several answers in turn.
type Lines struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
}

func NewLines(r io.Reader) *Lines {
	return &Lines{scanner: bufio.NewScanner(r)}
}

func (l *Lines) Listen(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := newStream(nil)
	go func() {
		defer s.finish()

		l.mu.Lock()
		defer l.mu.Unlock()

		for l.scanner.Scan() {
			line := strings.TrimSpace(l.scanner.Text())
			if line == "" {
				return
			}
			if !s.send(Segment{Text: line, Final: true}) {
				return
			}
		}
		if err := l.scanner.Err(); err != nil {
			s.fail(err)
		}
	}()

	return s, nil
}
