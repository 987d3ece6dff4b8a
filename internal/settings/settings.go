// Package settings persists user preferences and update bookkeeping.
package settings

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/agentstation/mediathek/pkg/constants"
	"github.com/agentstation/mediathek/pkg/errors"
	"github.com/agentstation/mediathek/pkg/shows"
)

// ListKind selects the full or the partial show list.
type ListKind string

// List kinds.
const (
	FullList    ListKind = "full"
	PartialList ListKind = "partial"
)

// Values is the on-disk document.
type Values struct {
	UserAgent                string        `yaml:"user_agent"`
	FullListURL              string        `yaml:"full_list_url"`
	PartialListURL           string        `yaml:"partial_list_url"`
	FullListMirrors          []string      `yaml:"full_list_mirrors,omitempty"`
	PartialListMirrors       []string      `yaml:"partial_list_mirrors,omitempty"`
	DatabaseUpdateAfterHours int           `yaml:"database_update_after_hours"`
	DatabaseUpdatedOn        time.Time     `yaml:"database_updated_on,omitempty"`
	PreferredURL             shows.URLKind `yaml:"preferred_url"`
}

// Defaults returns the values used when no file exists.
func Defaults() Values {
	return Values{
		UserAgent:                constants.DefaultUserAgent,
		FullListURL:              constants.DefaultFullListURL,
		PartialListURL:           constants.DefaultPartialListURL,
		DatabaseUpdateAfterHours: int(constants.DefaultDatabaseUpdateAfter / time.Hour),
		PreferredURL:             shows.URLDefault,
	}
}

// Settings is safe for concurrent use.
type Settings struct {
	mu     sync.RWMutex
	fs     afero.Fs
	path   string
	values Values
}

// New returns in-memory settings with defaults. Save is a no-op until a path is set.
func New() *Settings {
	return &Settings{values: Defaults()}
}

// Load reads settings from path. A missing file yields defaults.
func Load(fs afero.Fs, path string) (*Settings, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Settings{fs: fs, path: path, values: Defaults()}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	s.normalize()
	return s, nil
}

func (s *Settings) normalize() {
	d := Defaults()
	if s.values.UserAgent == "" {
		s.values.UserAgent = d.UserAgent
	}
	if s.values.FullListURL == "" {
		s.values.FullListURL = d.FullListURL
	}
	if s.values.PartialListURL == "" {
		s.values.PartialListURL = d.PartialListURL
	}
	if s.values.DatabaseUpdateAfterHours <= 0 {
		s.values.DatabaseUpdateAfterHours = d.DatabaseUpdateAfterHours
	}
	s.values.PreferredURL = shows.ParseURLKind(string(s.values.PreferredURL))
}

// Save writes the settings file.
func (s *Settings) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save()
}

// save requires s.mu.
func (s *Settings) save() error {
	if s.fs == nil || s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return errors.WrapResource("marshal", "settings", s.path, err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(s.path), err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	return nil
}

// Values returns a copy of the current values.
func (s *Settings) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.values
	v.FullListMirrors = append([]string(nil), s.values.FullListMirrors...)
	v.PartialListMirrors = append([]string(nil), s.values.PartialListMirrors...)
	return v
}

// Update applies fn to the values and saves them.
func (s *Settings) Update(fn func(*Values)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.values)
	s.normalize()
	return s.save()
}

// UserAgent returns the HTTP user agent for list downloads.
func (s *Settings) UserAgent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.UserAgent
}

// PreferredURL returns the preferred media quality.
func (s *Settings) PreferredURL() shows.URLKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.PreferredURL
}

// DatabaseUpdatedOn returns when the catalog was last refreshed.
func (s *Settings) DatabaseUpdatedOn() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.DatabaseUpdatedOn
}

// SetDatabaseUpdatedOn records a successful refresh and saves.
func (s *Settings) SetDatabaseUpdatedOn(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.DatabaseUpdatedOn = t.UTC()
	return s.save()
}

// UpdateAfter returns how old the catalog may become before a refresh.
func (s *Settings) UpdateAfter() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.values.DatabaseUpdateAfterHours) * time.Hour
}

// NeedsUpdate reports whether the catalog is stale at now.
func (s *Settings) NeedsUpdate(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.values.DatabaseUpdatedOn.IsZero() {
		return true
	}
	after := time.Duration(s.values.DatabaseUpdateAfterHours) * time.Hour
	return now.Sub(s.values.DatabaseUpdatedOn) >= after
}

// ListURLs returns the primary URL of kind followed by its mirrors.
func (s *Settings) ListURLs(kind ListKind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	primary, mirrors := s.values.FullListURL, s.values.FullListMirrors
	if kind == PartialList {
		primary, mirrors = s.values.PartialListURL, s.values.PartialListMirrors
	}
	urls := make([]string, 0, len(mirrors)+1)
	urls = append(urls, primary)
	for _, m := range mirrors {
		if m != "" && m != primary {
			urls = append(urls, m)
		}
	}
	return urls
}
