// Package progress records which notes a pass has already handled so an
// interrupted batch can resume where it stopped.
//
// State is held in memory and written by a Backend on Save. Two backends
// exist: a YAML file and a SQLite database.
package progress

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Mode separates dry-run bookkeeping from live runs, so a dry run never
// marks a note as rewritten.
type Mode string

const (
	ModeDryRun Mode = "dry_run"
	ModeLive   Mode = "live"
)

// ModeFor returns the mode matching a dry-run flag.
func ModeFor(dryRun bool) Mode {
	if dryRun {
		return ModeDryRun
	}
	return ModeLive
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	// ErrUnknownBackend is returned for a backend name other than file or sqlite.
	ErrUnknownBackend = errors.New("unknown progress backend")
	// ErrNoProgress is returned when there is no stored progress to act on.
	ErrNoProgress = errors.New("no progress recorded")
)

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	switch name {
	case "", BackendFile, BackendSQLite:
		return true
	}
	return false
}

// Tracker is what a batch needs from progress storage.
type Tracker interface {
	AlreadyDone(id string) bool
	MarkDone(id string)
	MarkError(id string, cause error)
	Save() error
	Close() error
}

// ErrorEntry is a note that failed, with the last failure message.
type ErrorEntry struct {
	Path    string    `yaml:"path" json:"path"`
	Message string    `yaml:"message" json:"message"`
	At      time.Time `yaml:"at" json:"at"`
}

// State is the persisted progress of one pass.
type State struct {
	Pass          string       `yaml:"pass"`
	CurrentMode   Mode         `yaml:"current_mode,omitempty"`
	StartedAt     time.Time    `yaml:"started_at"`
	LastUpdated   time.Time    `yaml:"last_updated,omitempty"`
	LastProcessed string       `yaml:"last_processed,omitempty"`
	DryRun        []string     `yaml:"processed_dry_run"`
	Live          []string     `yaml:"processed_live"`
	Errors        []ErrorEntry `yaml:"errors"`
}

func newState(pass string, now time.Time) *State {
	return &State{
		Pass:      pass,
		StartedAt: now,
		DryRun:    []string{},
		Live:      []string{},
		Errors:    []ErrorEntry{},
	}
}

func (s *State) list(mode Mode) *[]string {
	if mode == ModeLive {
		return &s.Live
	}
	return &s.DryRun
}

// Backend loads and persists State.
type Backend interface {
	// Load returns the stored state, or nil when nothing has been stored.
	Load() (*State, error)
	Persist(*State) error
	// Path is the on-disk location of the stored state.
	Path() string
	Close() error
}

// Options selects where and how progress is stored.
type Options struct {
	Backend string
	// Dir holds the progress store and its lock file.
	Dir string
	// Pass names the batch, e.g. migrate or enrich. Each pass has its own store.
	Pass string
	Mode Mode
	// Now is used for timestamps; defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// StorePath returns the file a backend would use for opts.
func StorePath(opts Options) (string, error) {
	base := filepath.Join(opts.Dir, opts.Pass+"_progress")
	switch opts.Backend {
	case "", BackendFile:
		return base + ".yaml", nil
	case BackendSQLite:
		return base + ".db", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}

func newBackend(opts Options) (Backend, error) {
	path, err := StorePath(opts)
	if err != nil {
		return nil, err
	}
	if opts.Backend == BackendSQLite {
		return OpenSQLiteStore(path)
	}
	return NewFileStore(path), nil
}

// Store tracks progress for one pass in one mode.
type Store struct {
	opts    Options
	backend Backend
	lock    *runLock
	state   *State
	done    map[string]bool
}

var _ Tracker = (*Store)(nil)

// Open loads the store for opts and takes the pass lock, so two runs of the
// same pass cannot interleave their bookkeeping.
func Open(opts Options) (*Store, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress directory: %w", err)
	}

	lock, err := acquireLock(filepath.Join(opts.Dir, opts.Pass+".lock"))
	if err != nil {
		return nil, err
	}

	s, err := openUnlocked(opts)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	s.lock = lock
	if opts.Mode != "" {
		s.state.CurrentMode = opts.Mode
	}
	return s, nil
}

// OpenReadOnly loads the store without taking the pass lock. It is meant
// for status reporting and must not be saved while a batch is running.
func OpenReadOnly(opts Options) (*Store, error) {
	return openUnlocked(opts)
}

func openUnlocked(opts Options) (*Store, error) {
	if opts.Mode == "" {
		opts.Mode = ModeDryRun
	}
	backend, err := newBackend(opts)
	if err != nil {
		return nil, err
	}

	state, err := backend.Load()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	if state == nil {
		state = newState(opts.Pass, opts.now())
	}
	normalize(state)

	s := &Store{opts: opts, backend: backend, state: state}
	s.indexDone()
	return s, nil
}

func normalize(s *State) {
	if s.DryRun == nil {
		s.DryRun = []string{}
	}
	if s.Live == nil {
		s.Live = []string{}
	}
	if s.Errors == nil {
		s.Errors = []ErrorEntry{}
	}
}

func (s *Store) indexDone() {
	list := *s.state.list(s.opts.Mode)
	s.done = make(map[string]bool, len(list))
	for _, id := range list {
		s.done[id] = true
	}
}

// Path returns the on-disk location of the store.
func (s *Store) Path() string { return s.backend.Path() }

// AlreadyDone reports whether id was processed in the store's mode.
func (s *Store) AlreadyDone(id string) bool {
	return s.done[id]
}

// MarkDone records id as processed and clears any earlier error for it.
func (s *Store) MarkDone(id string) {
	s.state.LastProcessed = id
	s.removeError(id)
	if s.done[id] {
		return
	}
	s.done[id] = true
	list := s.state.list(s.opts.Mode)
	*list = append(*list, id)
}

// MarkError records a failure for id. The note stays eligible for the next run.
func (s *Store) MarkError(id string, cause error) {
	s.state.LastProcessed = id
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	entry := ErrorEntry{Path: id, Message: msg, At: s.opts.now()}
	for i, e := range s.state.Errors {
		if e.Path == id {
			s.state.Errors[i] = entry
			return
		}
	}
	s.state.Errors = append(s.state.Errors, entry)
}

func (s *Store) removeError(id string) {
	kept := s.state.Errors[:0]
	for _, e := range s.state.Errors {
		if e.Path != id {
			kept = append(kept, e)
		}
	}
	s.state.Errors = kept
}

// Save persists the current state.
func (s *Store) Save() error {
	s.state.LastUpdated = s.opts.now()
	if err := s.backend.Persist(s.state); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Close releases the backend and the pass lock. It does not save.
func (s *Store) Close() error {
	err := s.backend.Close()
	if s.lock != nil {
		if lerr := s.lock.Release(); err == nil {
			err = lerr
		}
		s.lock = nil
	}
	return err
}

// Status summarizes stored progress.
type Status struct {
	Pass          string       `json:"pass"`
	Path          string       `json:"path"`
	CurrentMode   Mode         `json:"current_mode"`
	StartedAt     time.Time    `json:"started_at"`
	LastUpdated   time.Time    `json:"last_updated"`
	LastProcessed string       `json:"last_processed,omitempty"`
	DryRun        int          `json:"processed_dry_run"`
	Live          int          `json:"processed_live"`
	Errors        []ErrorEntry `json:"errors"`
}

// Status returns a snapshot of the store.
func (s *Store) Status() Status {
	errs := append([]ErrorEntry{}, s.state.Errors...)
	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
	return Status{
		Pass:          s.state.Pass,
		Path:          s.Path(),
		CurrentMode:   s.state.CurrentMode,
		StartedAt:     s.state.StartedAt,
		LastUpdated:   s.state.LastUpdated,
		LastProcessed: s.state.LastProcessed,
		DryRun:        len(s.state.DryRun),
		Live:          len(s.state.Live),
		Errors:        errs,
	}
}

// ClearTarget names a list that Clear empties.
type ClearTarget string

const (
	ClearDryRun ClearTarget = "dry-run"
	ClearLive   ClearTarget = "live"
	ClearErrors ClearTarget = "errors"
)

// ParseClearTarget parses dry-run, live or errors.
func ParseClearTarget(s string) (ClearTarget, error) {
	switch t := ClearTarget(strings.ToLower(strings.TrimSpace(s))); t {
	case ClearDryRun, ClearLive, ClearErrors:
		return t, nil
	}
	return "", fmt.Errorf("unknown progress list %q (want dry-run, live or errors)", s)
}

// Clear empties one list and returns how many entries it held. Call Save to
// persist the change.
func (s *Store) Clear(target ClearTarget) int {
	var n int
	switch target {
	case ClearDryRun:
		n = len(s.state.DryRun)
		s.state.DryRun = []string{}
	case ClearLive:
		n = len(s.state.Live)
		s.state.Live = []string{}
	case ClearErrors:
		n = len(s.state.Errors)
		s.state.Errors = []ErrorEntry{}
	}
	s.indexDone()
	return n
}

// Reset moves the stored progress aside to a *_backup file so the next run
// starts fresh. It returns the backup location.
func Reset(opts Options) (string, error) {
	path, err := StorePath(opts)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", ErrNoProgress
	}

	ext := filepath.Ext(path)
	backup := strings.TrimSuffix(path, ext) + "_backup" + ext
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("back up progress: %w", err)
	}
	return backup, nil
}

// Exists reports whether a store has been written for opts.
func Exists(opts Options) bool {
	path, err := StorePath(opts)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
