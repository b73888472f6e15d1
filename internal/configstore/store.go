// Package configstore holds the server's active configuration behind a
// read-write lock and polls the backing file for changes (spec §4.7,
// component C7).
package configstore

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// pollInterval is the watcher's fixed polling cadence (spec §4.7, P9).
const pollInterval = 500 * time.Millisecond

// Snapshot is a cheap, tear-free read of the fields request handling
// needs, captured under a single lock acquisition.
type Snapshot struct {
	AllowedKeys []string
	MaxFileSize int64
	Packages    map[string]ServerPackage
}

// Store holds the active ServerConfig and watches its backing file for
// changes. The zero value is not usable; construct with Open.
type Store struct {
	path string
	log  *logrus.Logger

	mu      sync.RWMutex
	cfg     ServerConfig
	modTime time.Time

	stop     chan struct{}
	stopped  chan struct{}
	seenErrs map[string]bool
	errMu    sync.Mutex
}

// Open performs the initial load of path, which is fatal on failure
// (spec §4.7 "Initial load"), and returns a Store ready to be watched.
func Open(path string, log *logrus.Logger) (*Store, error) {
	cfg, err := ParseServerConfig(path)
	if err != nil {
		return nil, err
	}
	info, statErr := os.Stat(path)
	var modTime time.Time
	if statErr == nil {
		modTime = info.ModTime()
	}

	return &Store{
		path:     path,
		log:      log,
		cfg:      *cfg,
		modTime:  modTime,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
		seenErrs: make(map[string]bool),
	}, nil
}

// Snapshot returns a point-in-time read of the fields request handling
// needs, with the package looked up once under the same lock.
func (s *Store) Snapshot(packageName string) (Snapshot, ServerPackage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		AllowedKeys: s.cfg.Server.AllowedKeys,
		MaxFileSize: s.cfg.Server.MaxFileSize,
		Packages:    s.cfg.Packages,
	}
	pkg, ok := s.cfg.Packages[packageName]
	return snap, pkg, ok
}

// Port returns the bind port pinned at the initial load (I6).
func (s *Store) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Server.Port
}

// Watch starts the polling loop in its own goroutine. Stop ends it.
func (s *Store) Watch() {
	go s.watchLoop()
}

// Stop halts the watcher and blocks until its goroutine has exited.
func (s *Store) Stop() {
	close(s.stop)
	<-s.stopped
}

func (s *Store) watchLoop() {
	defer close(s.stopped)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

func (s *Store) pollOnce() {
	info, err := os.Stat(s.path)
	if err != nil {
		s.logOnce(err.Error())
		return
	}
	if !info.ModTime().After(s.modTime) {
		return
	}

	newCfg, err := ParseServerConfig(s.path)
	if err != nil {
		s.logOnce(err.Error())
		return
	}

	s.mu.Lock()
	currentPort := s.cfg.Server.Port
	if newCfg.Server.Port != currentPort {
		s.log.Warnf("config reload: server.port changed from %d to %d; ignoring (port is fixed at startup)", currentPort, newCfg.Server.Port)
		newCfg.Server.Port = currentPort
	}
	s.cfg = *newCfg
	s.mu.Unlock()

	s.modTime = info.ModTime()
	s.clearErrSeen()
	s.log.Info("config reloaded")
}

// logOnce emits msg at error level the first time it is seen and stays
// silent on repeats, per spec §4.7's rate-limiting requirement.
func (s *Store) logOnce(msg string) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.seenErrs[msg] {
		return
	}
	s.seenErrs[msg] = true
	s.log.Errorf("config watcher: %s", msg)
}

func (s *Store) clearErrSeen() {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.seenErrs = make(map[string]bool)
}
