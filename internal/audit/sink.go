package audit

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SinkOptions selects where audit lines go.
type SinkOptions struct {
	// Path is the audit log file. Empty disables the sink.
	Path string

	// MaxSizeMB enables rotation when positive: the file is rotated once it
	// would grow past this size.
	MaxSizeMB int

	// MaxBackups is the number of rotated files to keep (0 keeps all).
	MaxBackups int

	// MaxAgeDays removes rotated files older than this (0 never removes).
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool
}

// OpenSink opens the audit destination described by opts. It returns a nil
// writer and nil error when opts.Path is empty.
//
// Every record is appended through an O_APPEND handle, so concurrent
// sessions each writing whole lines never interleave or truncate one
// another. With rotation enabled, writes are additionally serialized with
// an advisory lock on a sibling ".lock" file.
func OpenSink(opts SinkOptions) (io.WriteCloser, error) {
	if opts.Path == "" {
		return nil, nil
	}
	if opts.MaxSizeMB > 0 {
		rs, err := openRotating(opts)
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	f, err := openAppend(opts.Path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// openAppend opens path for appending, creating it if needed.
// Parent directories must already exist.
func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return f, nil
}

// rotatingSink appends records under an exclusive flock and has lumberjack
// rotate the file when the next record would push it past maxBytes.
//
// lumberjack never receives a record: the handle it opens after a rotation
// is truncating and not O_APPEND, so it is closed straight away and only
// its rename and backup pruning are used.
type rotatingSink struct {
	path     string
	maxBytes int64
	lock     *os.File
	rotator  *lumberjack.Logger
}

func openRotating(opts SinkOptions) (*rotatingSink, error) {
	lock, err := os.OpenFile(opts.Path+".lock", os.O_CREATE|os.O_RDWR, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &rotatingSink{
		path:     opts.Path,
		maxBytes: int64(opts.MaxSizeMB) * 1024 * 1024,
		lock:     lock,
		rotator: &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
			LocalTime:  true,
		},
	}, nil
}

// Write appends p as one write while holding the lock.
func (s *rotatingSink) Write(p []byte) (int, error) {
	fd := int(s.lock.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return 0, fmt.Errorf("lock audit log: %w", err)
	}
	defer func() { _ = unix.Flock(fd, unix.LOCK_UN) }()

	if err := s.rotateIfFull(int64(len(p))); err != nil {
		return 0, err
	}

	f, err := openAppend(s.path)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// rotateIfFull must be called with the lock held. A record larger than the
// limit still goes into an empty file.
func (s *rotatingSink) rotateIfFull(n int64) error {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}
	if info.Size() == 0 || info.Size()+n <= s.maxBytes {
		return nil
	}
	if err := s.rotator.Rotate(); err != nil {
		return fmt.Errorf("rotate audit log: %w", err)
	}
	return s.rotator.Close()
}

// Close releases the lock file.
func (s *rotatingSink) Close() error {
	return s.lock.Close()
}
