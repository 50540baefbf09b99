// Package loam stores machines as markdown documents in a loam repository.
// The codec.Document lives in the frontmatter and the body is the rendered
// description of the machine, so a stored directory reads as documentation.
package loam

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/powerset/internal/presentation/tui"
	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
)

const ext = ".md"

// Store implements ports.MachineStore on top of loam.
type Store struct {
	mu    sync.Mutex
	repo  core.Repository
	typed *loam.TypedRepository[codec.Document]
}

// Open initializes a loam repository rooted at dir. Versioning is off
// unless opts turn it back on.
func Open(dir string, opts ...loam.Option) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	opts = append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(abs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam repository %s: %w", abs, err)
	}
	return &Store{
		repo:  repo,
		typed: loam.NewTypedRepository[codec.Document](repo),
	}, nil
}

// docID maps a machine name to a flat file name. Separators are escaped so
// a name never escapes the repository root.
func docID(name string) string {
	return url.PathEscape(name) + ext
}

func nameOf(id string) (string, bool) {
	id = filepath.ToSlash(id)
	if strings.Contains(id, "/") {
		return "", false
	}
	name, err := url.PathUnescape(strings.TrimSuffix(id, ext))
	if err != nil {
		return "", false
	}
	return name, true
}

// Save writes the document as frontmatter with the machine description as body.
func (s *Store) Save(ctx context.Context, name string, doc *codec.Document) error {
	m, err := doc.Machine()
	if err != nil {
		return fmt.Errorf("failed to save machine %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.typed.Save(ctx, &loam.DocumentModel[codec.Document]{
		ID:      docID(name),
		Content: tui.Describe(m),
		Data:    *doc,
	})
	if err != nil {
		return fmt.Errorf("failed to write machine %q: %w", name, err)
	}
	return nil
}

// Load retrieves the document stored under name.
func (s *Store) Load(ctx context.Context, name string) (*codec.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrMachineNotFound
	}

	model, err := s.typed.Get(ctx, docID(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read machine %q: %w", name, err)
	}
	doc := model.Data
	normalize(&doc)
	return &doc, nil
}

// Delete removes the machine. Missing names are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(ctx, name)
	if err != nil || !exists {
		return err
	}
	if err := s.repo.Delete(ctx, docID(name)); err != nil {
		return fmt.Errorf("failed to delete machine %q: %w", name, err)
	}
	return nil
}

// List returns stored names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

func (s *Store) list(ctx context.Context) ([]string, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		if name, ok := nameOf(d.ID); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) exists(ctx context.Context, name string) (bool, error) {
	names, err := s.list(ctx)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(names, name)
	return found, nil
}

// normalize restores empty slices that frontmatter round trips as null.
func normalize(doc *codec.Document) {
	if doc.States == nil {
		doc.States = []string{}
	}
	if doc.Alphabet == nil {
		doc.Alphabet = []string{}
	}
	if doc.Transitions == nil {
		doc.Transitions = []codec.TransitionDocument{}
	}
	if doc.Accepting == nil {
		doc.Accepting = []string{}
	}
}
