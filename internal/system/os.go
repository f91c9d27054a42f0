package system

import (
	"encoding/base64"
	"os"
	"sync"
	"time"

	"github.com/frida/frida-compile/internal/pathutil"
)

// DefaultPollInterval is how often OS watches compare file state. Polling
// keeps the watch implementation identical across platforms.
const DefaultPollInterval = 500 * time.Millisecond

// OS implements System against the host filesystem.
type OS struct {
	// PollInterval overrides DefaultPollInterval when non-zero.
	PollInterval time.Duration
}

var _ System = (*OS)(nil)

// NewOS creates a host-backed System.
func NewOS() *OS {
	return &OS{}
}

func (s *OS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(pathutil.ToNative(path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *OS) WriteFile(path string, data string) error {
	native := pathutil.ToNative(path)
	if err := os.MkdirAll(pathutil.ToNative(pathutil.Dir(path)), 0755); err != nil {
		return err
	}
	return os.WriteFile(native, []byte(data), 0644)
}

func (s *OS) FileExists(path string) bool {
	fi, err := os.Stat(pathutil.ToNative(path))
	return err == nil && !fi.IsDir()
}

func (s *OS) DirectoryExists(path string) bool {
	fi, err := os.Stat(pathutil.ToNative(path))
	return err == nil && fi.IsDir()
}

func (s *OS) ReadDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(pathutil.ToNative(path))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *OS) RealPath(path string) (string, error) {
	resolved, err := realpath(pathutil.ToNative(path))
	if err != nil {
		return "", err
	}
	return pathutil.ToPosix(resolved), nil
}

func (s *OS) ModTime(path string) (time.Time, error) {
	fi, err := os.Stat(pathutil.ToNative(path))
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

func (s *OS) DecodeBase64(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

func (s *OS) After(d time.Duration, fn func()) Timer {
	return osTimer{time.AfterFunc(d, fn)}
}

func (s *OS) Getenv(key string) string {
	return os.Getenv(key)
}

type osTimer struct {
	t *time.Timer
}

func (t osTimer) Stop() bool {
	return t.t.Stop()
}

type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

// pollWatch compares file state snapshots on a ticker. One goroutine per
// subscription; Close is idempotent.
type pollWatch struct {
	stopOnce sync.Once
	stopCh   chan struct{}
}

func (w *pollWatch) Close() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (s *OS) pollInterval() time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return DefaultPollInterval
}

func (s *OS) WatchFile(path string, onEvent func(FileEvent)) (Watch, error) {
	w := &pollWatch{stopCh: make(chan struct{})}
	prev := s.statFile(path)

	go func() {
		ticker := time.NewTicker(s.pollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-w.stopCh:
				return
			case <-ticker.C:
				cur := s.statFile(path)
				switch {
				case prev.exists && !cur.exists:
					onEvent(FileEvent{Path: path, Kind: EventUnlinked})
				case cur.exists && (!prev.exists || cur.modTime != prev.modTime || cur.size != prev.size):
					onEvent(FileEvent{Path: path, Kind: EventChanged})
				}
				prev = cur
			}
		}
	}()

	return w, nil
}

func (s *OS) WatchDirectory(path string, onEvent func(FileEvent)) (Watch, error) {
	w := &pollWatch{stopCh: make(chan struct{})}
	prev := s.snapshotDir(path)

	go func() {
		ticker := time.NewTicker(s.pollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-w.stopCh:
				return
			case <-ticker.C:
				cur := s.snapshotDir(path)
				for p, st := range cur {
					if old, ok := prev[p]; !ok || st.modTime != old.modTime || st.size != old.size {
						onEvent(FileEvent{Path: p, Kind: EventChanged})
					}
				}
				for p := range prev {
					if _, ok := cur[p]; !ok {
						onEvent(FileEvent{Path: p, Kind: EventUnlinked})
					}
				}
				prev = cur
			}
		}
	}()

	return w, nil
}

func (s *OS) statFile(path string) fileState {
	fi, err := os.Stat(pathutil.ToNative(path))
	if err != nil || fi.IsDir() {
		return fileState{}
	}
	return fileState{modTime: fi.ModTime(), size: fi.Size(), exists: true}
}

func (s *OS) snapshotDir(path string) map[string]fileState {
	snap := make(map[string]fileState)
	entries, err := os.ReadDir(pathutil.ToNative(path))
	if err != nil {
		return snap
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		child := pathutil.Join(path, e.Name())
		if st := s.statFile(child); st.exists {
			snap[child] = st
		}
	}
	return snap
}
