// Package loam stores recipient records as markdown documents with YAML frontmatter,
// one file per record, in a Loam repository.
package loam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"gopkg.in/yaml.v3"
)

const extension = ".md"

// ErrInvalidID is returned for ids that would escape the repository directory.
var ErrInvalidID = errors.New("invalid recipient id")

// Store implements ports.RecipientStore over a Loam repository.
type Store struct {
	repo  core.Repository
	typed *loam.TypedRepository[RecordMetadata]
}

// Open initializes a Loam repository at dir and returns a store over it.
func Open(dir string) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps digit strings from being read back as numbers.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

// New creates a store over an initialized repository.
func New(repo core.Repository) *Store {
	return &Store{
		repo:  repo,
		typed: loam.NewTypedRepository[RecordMetadata](repo),
	}
}

// Save writes the record document, replacing any previous version.
func (s *Store) Save(ctx context.Context, record *ports.Record) error {
	if record == nil {
		return fmt.Errorf("loam store: %w: nil record", ErrInvalidID)
	}
	if err := checkID(record.ID); err != nil {
		return err
	}

	content, err := render(record)
	if err != nil {
		return err
	}

	if err := s.repo.Save(ctx, core.Document{ID: record.ID + extension, Content: content}); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", record.ID, err)
	}
	return nil
}

// Load reads the record document.
func (s *Store) Load(ctx context.Context, recipientID string) (*ports.Record, error) {
	if err := checkID(recipientID); err != nil {
		return nil, err
	}

	doc, err := s.typed.Get(ctx, recipientID)
	if err != nil {
		if exists, listErr := s.exists(ctx, recipientID); listErr == nil && !exists {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", recipientID, err)
	}

	meta := doc.Data
	id := meta.ID
	if id == "" {
		id = trimExtension(doc.ID)
	}
	return &ports.Record{
		ID:            id,
		FirstName:     meta.FirstName,
		MiddleName:    meta.MiddleName,
		LastName:      meta.LastName,
		AccountNumber: meta.AccountNumber,
	}, nil
}

// Delete removes the record document. Missing documents are ignored.
func (s *Store) Delete(ctx context.Context, recipientID string) error {
	if err := checkID(recipientID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, recipientID+extension); err != nil {
		if exists, listErr := s.exists(ctx, recipientID); listErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("loam delete failed for %s: %w", recipientID, err)
	}
	return nil
}

// List returns the ids of all record documents.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) exists(ctx context.Context, recipientID string) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == recipientID {
			return true, nil
		}
	}
	return false, nil
}

// render builds the markdown document: frontmatter plus the display name as heading.
func render(record *ports.Record) (string, error) {
	meta := RecordMetadata{
		ID:            record.ID,
		FirstName:     record.FirstName,
		MiddleName:    record.MiddleName,
		LastName:      record.LastName,
		AccountNumber: record.AccountNumber,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("---\n")
	doc.Write(buf.Bytes())
	doc.WriteString("---\n")
	if name := domain.DeriveName(record.FirstName, record.MiddleName, record.LastName); name != "" {
		doc.WriteString("# " + name + "\n")
	}
	return doc.String(), nil
}

func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
