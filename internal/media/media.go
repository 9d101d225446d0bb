// Package media opens the camera used by live mock interviews and maps device
// failures onto user facing messages.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
)

type Kind string

const (
	PermissionDenied Kind = "permission-denied"
	NotFound         Kind = "not-found"
	Busy             Kind = "busy"
	Unsupported      Kind = "unsupported"
	Unknown          Kind = "unknown"
)

var messages = map[Kind]string{
	PermissionDenied: "Camera/microphone access denied. Please allow access to continue.",
	NotFound:         "No camera/microphone found. Please connect devices to use this feature.",
	Busy:             "Camera/microphone is already in use by another application.",
	Unsupported:      "Your browser does not support camera/microphone access.",
	Unknown:          "Failed to access camera/microphone. Please check your browser settings.",
}

var ErrClosed = errors.New("device is not open")

// Error is a classified device failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("media device %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user facing text for a device error.
func Message(err error) string {
	var me *Error
	if errors.As(err, &me) {
		return messages[me.Kind]
	}
	return messages[Unknown]
}

// KindOf returns the kind of a device error, Unknown for anything else.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return Unknown
}

// Classify maps an error from opening a device onto a Kind.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var me *Error
	if errors.As(err, &me) {
		return me
	}

	kind := Unknown
	switch {
	case errors.Is(err, os.ErrPermission):
		kind = PermissionDenied
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO):
		kind = NotFound
	case errors.Is(err, syscall.EBUSY):
		kind = Busy
	case errors.Is(err, syscall.ENOTTY), errors.Is(err, syscall.EINVAL):
		kind = Unsupported
	}

	return &Error{Kind: kind, Err: err}
}

// Device is a camera that can grab still frames.
type Device interface {
	Open(ctx context.Context) error
	Capture(ctx context.Context) ([]byte, error)
	Close() error
}

const (
	DefaultVideoPath = "/dev/video0"
	DefaultFrameSize = 640 * 480 * 2
)

// VideoDevice reads raw frames from a V4L2 character device.
type VideoDevice struct {
	Path      string
	FrameSize int

	mu   sync.Mutex
	file *os.File
}

func NewVideoDevice(path string) *VideoDevice {
	if path == "" {
		path = DefaultVideoPath
	}
	return &VideoDevice{Path: path, FrameSize: DefaultFrameSize}
}

func (d *VideoDevice) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file != nil {
		return nil
	}

	f, err := os.OpenFile(d.Path, os.O_RDWR, 0)
	if err != nil {
		return Classify(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return Classify(err)
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		f.Close()
		return &Error{Kind: Unsupported, Err: fmt.Errorf("%s is not a character device", d.Path)}
	}

	d.file = f
	return nil
}

func (d *VideoDevice) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil, ErrClosed
	}

	size := d.FrameSize
	if size <= 0 {
		size = DefaultFrameSize
	}

	frame := make([]byte, size)
	n, err := d.file.Read(frame)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, Classify(err)
	}
	return frame[:n], nil
}

func (d *VideoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
