package logpipe

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	latestLogName    = "latest.log"
	uniqueNameLayout = "2006-01-02_15-04-05.000000"
	logFileMode      = 0o664
	logDirMode       = 0o755
)

// sink is a file-backed hook target flushed and closed with the context.
type sink interface {
	Hook() Hook
	Path() string
	Flush() error
	Close() error
}

// latestFile appends to <dir>/latest.log through a buffer that is only
// flushed on Flush or Close.
type latestFile struct {
	mu   sync.Mutex
	path string
	file *os.File
	buf  *bufio.Writer
	err  error
}

func openLatestFile(dir string) (*latestFile, error) {
	path := filepath.Join(dir, latestLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return &latestFile{path: path, file: f, buf: bufio.NewWriter(f)}, nil
}

func (l *latestFile) Hook() Hook {
	return func(_ Record, line *string) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.file == nil {
			return
		}
		if _, err := l.buf.WriteString(*line + "\n"); err != nil && l.err == nil {
			l.err = err
		}
	}
}

func (l *latestFile) Path() string { return l.path }

func (l *latestFile) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return l.err
	}
	if err := l.buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", l.path, err)
	}
	return l.err
}

func (l *latestFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	flushErr := l.buf.Flush()
	closeErr := l.file.Close()
	l.file = nil
	return errors.Join(flushErr, closeErr, l.err)
}

// uniqueFile writes through to a per-run file named after its creation time.
type uniqueFile struct {
	mu   sync.Mutex
	path string
	file *os.File
	err  error
}

func openUniqueFile(dir string, now time.Time) (*uniqueFile, error) {
	base := now.Format(uniqueNameLayout)
	path := filepath.Join(dir, base+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, logFileMode)
	if errors.Is(err, fs.ErrExist) {
		path = filepath.Join(dir, base+"-"+uuid.NewString()[:8]+".log")
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, logFileMode)
	}
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return &uniqueFile{path: path, file: f}, nil
}

func (u *uniqueFile) Hook() Hook {
	return func(_ Record, line *string) {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.file == nil {
			return
		}
		if _, err := u.file.WriteString(*line + "\n"); err != nil && u.err == nil {
			u.err = err
		}
	}
}

func (u *uniqueFile) Path() string { return u.path }

func (u *uniqueFile) Flush() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

func (u *uniqueFile) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.file == nil {
		return nil
	}
	err := u.file.Close()
	u.file = nil
	return errors.Join(err, u.err)
}

func ensureLogDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, logDirMode); err != nil {
		return fmt.Errorf("ensure log directory: %w", err)
	}
	return nil
}
