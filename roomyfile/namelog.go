package roomyfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// NameLog is a flat text file holding one name per line.
// Additions are appended, removals rewrite the whole file.
type NameLog struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewNameLog(fs afero.Fs, path string) *NameLog {
	return &NameLog{fs: fs, path: path}
}

func (l *NameLog) Path() string {
	return l.path
}

// Load returns the logged names in file order. Blank lines and repeated names are skipped,
// so a log written by an interrupted process still loads cleanly.
func (l *NameLog) Load() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read name log '%s': %w", l.path, err)
	}
	var names []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan name log '%s': %w", l.path, err)
	}
	return names, nil
}

func (l *NameLog) Append(name string) error {
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("name must be a single line: %q", name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open name log '%s': %w", l.path, err)
	}
	if _, err := f.WriteString(name + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to name log '%s': %w", l.path, err)
	}
	return f.Close()
}

// Rewrite replaces the log with names. The new content is written next to the log and renamed over it.
func (l *NameLog) Rewrite(names []string) error {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	tmp := l.path + ".tmp"
	if err := afero.WriteFile(l.fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write name log '%s': %w", tmp, err)
	}
	if err := l.fs.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace name log '%s': %w", l.path, err)
	}
	return nil
}
