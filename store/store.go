// Package store records on disk which stage each segment has completed.
//
// There is no state file: a segment's state is whatever artifacts exist, and every
// artifact is written to a temporary name and renamed into place, so an interrupted
// write is never mistaken for a complete one.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/segrab-cli/segrab/log"
	"github.com/spf13/afero"
)

// ErrLocked is returned when another run holds the work directory.
var ErrLocked = errors.New("work directory is locked by another run")

// State is the furthest stage a segment has completed.
type State int

const (
	NotFetched State = iota
	Fetched
	Converted
)

func (s State) String() string {
	switch s {
	case Fetched:
		return "fetched"
	case Converted:
		return "converted"
	default:
		return "not fetched"
	}
}

// Store persists the artifacts of one target.
type Store struct {
	fs     afero.Fs
	layout Layout
}

// New returns a store writing through fs.
func New(fs afero.Fs, layout Layout) *Store {
	return &Store{fs: fs, layout: layout}
}

// Layout returns the store's layout.
func (s *Store) Layout() Layout {
	return s.layout
}

// Prepare creates the stage directories.
func (s *Store) Prepare() error {
	for _, stage := range []Stage{StageFetched, StageConverted} {
		if err := s.fs.MkdirAll(s.layout.StageDir(stage), os.ModePerm); err != nil {
			return fmt.Errorf("create %s directory: %w", stage, err)
		}
	}
	return nil
}

// Has reports whether the artifact of id for stage exists, ignoring later stages.
func (s *Store) Has(id int, stage Stage) bool {
	return s.exists(s.layout.SegmentPath(id, stage))
}

// IsFetched reports whether the raw bytes of id are persisted.
// A converted segment counts as fetched, so state never regresses.
func (s *Store) IsFetched(id int) bool {
	return s.Has(id, StageFetched) || s.IsConverted(id)
}

// IsConverted reports whether the normalized form of id is persisted.
func (s *Store) IsConverted(id int) bool {
	return s.Has(id, StageConverted)
}

// State returns the furthest stage id has completed.
func (s *Store) State(id int) State {
	switch {
	case s.IsConverted(id):
		return Converted
	case s.IsFetched(id):
		return Fetched
	default:
		return NotFetched
	}
}

// Save atomically persists the artifact of id for stage.
func (s *Store) Save(id int, stage Stage, data []byte) error {
	return s.WriteAtomic(s.layout.SegmentPath(id, stage), data)
}

// Commit moves an artifact produced at tmp, typically by the media tool, into place for id.
func (s *Store) Commit(tmp string, id int, stage Stage) error {
	return s.rename(tmp, s.layout.SegmentPath(id, stage))
}

// WriteList atomically writes the concat list.
func (s *Store) WriteList(data []byte) error {
	return s.WriteAtomic(s.layout.ListPath(), data)
}

// OutputExists reports whether the merged video is complete.
func (s *Store) OutputExists() bool {
	return s.exists(s.layout.Output)
}

// PrepareOutput creates the output directory and removes any stale temporary output.
func (s *Store) PrepareOutput() error {
	if err := s.fs.MkdirAll(filepath.Dir(s.layout.Output), os.ModePerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := s.fs.Remove(s.layout.TempOutput()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale output: %w", err)
	}
	return nil
}

// CommitOutput moves the merged video from its temporary path into place.
func (s *Store) CommitOutput() error {
	return s.rename(s.layout.TempOutput(), s.layout.Output)
}

// WriteAtomic writes data to a temporary file next to path and renames it into place.
func (s *Store) WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = s.fs.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(path)+".*"+".tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return s.rename(tmp.Name(), path)
}

// Lock claims the work directory for this process.
func (s *Store) Lock() error {
	if err := s.fs.MkdirAll(s.layout.WorkDir, os.ModePerm); err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}

	path := s.layout.LockPath()
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owner, _ := afero.ReadFile(s.fs, path)
			return fmt.Errorf("%w (pid %s, lock file %s)", ErrLocked, strings.TrimSpace(string(owner)), path)
		}
		return fmt.Errorf("create lock: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return fmt.Errorf("write lock: %w", err)
	}

	return nil
}

// Unlock releases the work directory.
func (s *Store) Unlock() error {
	if err := s.fs.Remove(s.layout.LockPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock: %w", err)
	}
	return nil
}

// Clean removes every intermediate artifact and the work directory.
// It keeps going after a failure and reports all of them.
func (s *Store) Clean() error {
	var result *multierror.Error

	for _, path := range []string{
		s.layout.StageDir(StageFetched),
		s.layout.StageDir(StageConverted),
		s.layout.ListPath(),
		s.layout.LockPath(),
	} {
		if err := s.fs.RemoveAll(path); err != nil {
			result = multierror.Append(result, fmt.Errorf("remove %s: %w", path, err))
		}
	}

	if err := s.fs.Remove(s.layout.WorkDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		result = multierror.Append(result, fmt.Errorf("remove %s: %w", s.layout.WorkDir, err))
	}

	return result.ErrorOrNil()
}

func (s *Store) rename(from, to string) error {
	if err := s.fs.Rename(from, to); err != nil {
		return fmt.Errorf("commit %s: %w", to, err)
	}

	log.Tracef("committed %s", to)
	return nil
}

func (s *Store) exists(path string) bool {
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		log.Warnf("stat %s: %v", path, err)
	}
	return ok
}
