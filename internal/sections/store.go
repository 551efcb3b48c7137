package sections

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const (
	textCodeWriteFailed  = "SECTION_WRITE_FAILED"
	textCodeReadFailed   = "SECTION_READ_FAILED"
	textCodeListFailed   = "SECTION_LIST_FAILED"
	textCodeSectionEmpty = "SECTION_NOT_FOUND"
)

// Store persists CSS sections per theme.
type Store interface {
	Save(ctx context.Context, themeID uuid.UUID, name, css string) error
	Get(ctx context.Context, themeID uuid.UUID, name string) (string, error)
	Exists(ctx context.Context, themeID uuid.UUID, name string) (bool, error)
	Delete(ctx context.Context, themeID uuid.UUID, name string) bool
	ListTemplates(ctx context.Context, themeID uuid.UUID) ([]string, error)
	ValidateRequired(ctx context.Context, themeID uuid.UUID) ([]string, error)
}

// StoreOption configures the store.
type StoreOption func(*store)

// WithLogger overrides the store logger.
func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type store struct {
	blobs  interfaces.BlobStorage
	logger interfaces.Logger
	locks  *keyedMutex
}

// NewStore returns a section store backed by blobs.
func NewStore(blobs interfaces.BlobStorage, opts ...StoreOption) Store {
	if blobs == nil {
		panic(ErrStorageRequired)
	}
	s := &store{
		blobs:  blobs,
		logger: logging.NoOp(),
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Save overwrites the section. Writes to the same section are serialised.
func (s *store) Save(ctx context.Context, themeID uuid.UUID, name, css string) error {
	key, err := s.key(themeID, name)
	if err != nil {
		return err
	}
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.blobs.Put(ctx, key, []byte(css)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "sections: write failed").
			WithTextCode(textCodeWriteFailed).
			WithMetadata(map[string]any{"key": key})
	}
	logging.WithTheme(s.logger, themeID, name).Debug("section.saved", "bytes", len(css))
	return nil
}

func (s *store) Get(ctx context.Context, themeID uuid.UUID, name string) (string, error) {
	key, err := s.key(themeID, name)
	if err != nil {
		return "", err
	}
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrBlobNotFound) {
			return "", goerrors.Wrap(ErrSectionNotFound, goerrors.CategoryNotFound, "sections: "+name+" not found").
				WithTextCode(textCodeSectionEmpty)
		}
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "sections: read failed").
			WithTextCode(textCodeReadFailed).
			WithMetadata(map[string]any{"key": key})
	}
	return string(data), nil
}

func (s *store) Exists(ctx context.Context, themeID uuid.UUID, name string) (bool, error) {
	key, err := s.key(themeID, name)
	if err != nil {
		return false, err
	}
	return s.blobs.Exists(ctx, key)
}

// Delete removes a section and reports whether it did. Storage failures are
// logged, not returned.
func (s *store) Delete(ctx context.Context, themeID uuid.UUID, name string) bool {
	key, err := s.key(themeID, name)
	if err != nil {
		return false
	}
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.blobs.Delete(ctx, key); err != nil {
		if !errors.Is(err, interfaces.ErrBlobNotFound) {
			logging.WithTheme(s.logger, themeID, name).Warn("section.delete_failed", "error", err)
		}
		return false
	}
	return true
}

// ListTemplates returns the template section names of a theme, digit runs
// ordered by value.
func (s *store) ListTemplates(ctx context.Context, themeID uuid.UUID) ([]string, error) {
	if themeID == uuid.Nil {
		return nil, ErrThemeRequired
	}
	folder := Folder(themeID)
	keys, err := s.blobs.List(ctx, folder+TemplatePrefix)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "sections: list failed").
			WithTextCode(textCodeListFailed)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, folder)
		if !strings.HasSuffix(name, extension) || strings.Contains(name, "/") {
			continue
		}
		name = strings.TrimSuffix(name, extension)
		if IsTemplate(name) {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })
	return names, nil
}

// ValidateRequired returns the required sections that do not exist yet, in
// RequiredSections order.
func (s *store) ValidateRequired(ctx context.Context, themeID uuid.UUID) ([]string, error) {
	missing := []string{}
	for _, name := range RequiredSections {
		ok, err := s.Exists(ctx, themeID, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (s *store) key(themeID uuid.UUID, name string) (string, error) {
	if themeID == uuid.Nil {
		return "", ErrThemeRequired
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return Key(themeID, name), nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*refLock{}}
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &refLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
