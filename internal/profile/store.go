package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
)

const (
	storeDirPerm  = 0o755
	storeFilePerm = 0o644
)

// Store owns the profile collection, the active index and the backing
// file. Every mutation validates first and then rewrites the whole file
// under the lock, so the persisted state never holds a partial write.
type Store struct {
	mu       sync.Mutex
	profiles []Profile
	active   int
	path     string
}

// DefaultPath returns the per-user profiles file location
func DefaultPath() (string, error) {
	errFactory := errors.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errFactory.Wrap(errors.ErrInitFailed, err)
	}

	return filepath.Join(home, ".config", "tuxedo-control", "profiles.json"), nil
}

// NewStore loads the profile collection from path, synthesizing and
// persisting a default profile when the file is missing or empty.
func NewStore(path string) (*Store, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}

	if len(s.profiles) == 0 {
		s.profiles = []Profile{Default()}
		if err := s.save(); err != nil {
			return nil, err
		}
		logger.Info().Str("path", path).Msg("No profiles found, created default profile")
	}

	return s, nil
}

// load reads and validates the persisted collection. A validation failure
// on any profile fails the whole load; the store never opens with a subset.
func (s *Store) load() error {
	errFactory := errors.New()

	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	var profiles []Profile
	if err := json.Unmarshal(content, &profiles); err != nil {
		return errFactory.Wrap(errors.ErrParseFailure, err).WithMessage("failed to parse profiles file")
	}

	for i := range profiles {
		if err := profiles[i].Validate(); err != nil {
			return errFactory.Wrap(errors.ErrValidationFailed, err).
				WithMessage(fmt.Sprintf("invalid profile: %s", profiles[i].Name))
		}
	}

	s.profiles = profiles

	return nil
}

// save rewrites the backing file wholesale. Callers must hold the lock.
func (s *Store) save() error {
	errFactory := errors.New()

	content, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(s.path, content, storeFilePerm); err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err).WithMessage("failed to write profiles file")
	}

	return nil
}

// Add validates and appends a profile, rejecting duplicate names
func (s *Store) Add(p Profile) error {
	errFactory := errors.New()

	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].Name == p.Name {
			return errFactory.WithData(errors.ErrDuplicateName, p.Name)
		}
	}

	s.profiles = append(s.profiles, p)

	return s.save()
}

// Update validates and replaces the profile at index
func (s *Store) Update(index int, p Profile) error {
	errFactory := errors.New()

	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profiles) {
		return errFactory.WithData(errors.ErrIndexOutOfRange, index)
	}

	s.profiles[index] = p

	return s.save()
}

// Delete removes the profile at index. The default profile is protected,
// and the active index resets to 0 when it would point past the new end.
func (s *Store) Delete(index int) error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profiles) {
		return errFactory.WithData(errors.ErrIndexOutOfRange, index)
	}
	if s.profiles[index].IsDefault {
		return errFactory.New(errors.ErrDefaultProtected)
	}

	s.profiles = append(s.profiles[:index], s.profiles[index+1:]...)

	if s.active >= len(s.profiles) {
		s.active = 0
	}

	return s.save()
}

// SetActive selects the active profile; hardware application is the
// controller's job.
func (s *Store) SetActive(index int) error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profiles) {
		return errFactory.WithData(errors.ErrIndexOutOfRange, index)
	}

	s.active = index

	return nil
}

// Active returns a copy of the currently active profile
func (s *Store) Active() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.profiles[s.active]
}

// ActiveIndex returns the index of the currently active profile
func (s *Store) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Profiles returns a copy of the profile collection
func (s *Store) Profiles() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := make([]Profile, len(s.profiles))
	copy(profiles, s.profiles)

	return profiles
}

// IndexOf resolves a profile name to its index
func (s *Store) IndexOf(name string) (int, error) {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].Name == name {
			return i, nil
		}
	}

	return 0, errFactory.WithData(errors.ErrNotFound, name)
}

// FindProfileForApp returns the index of the first profile whose
// auto-switch triggers match the given application name.
func (s *Store) FindProfileForApp(appName string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].MatchesApp(appName) {
			return i, true
		}
	}

	return 0, false
}
