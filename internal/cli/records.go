package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"gopkg.in/yaml.v3"
)

// ReadRecords decodes a YAML (or JSON) list of wire records.
// Scalars are kept as written, so account numbers keep leading zeros.
func ReadRecords(path string) ([]*ports.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var records []*ports.Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode records %s: %w", path, err)
	}
	for i, rec := range records {
		if rec == nil || rec.ID == "" {
			return nil, fmt.Errorf("decode records %s: entry %d has no id", path, i)
		}
	}
	return records, nil
}

// SeedRecords saves records into store. Existing ids are skipped unless force
// is set. It returns how many records were written.
func SeedRecords(ctx context.Context, store ports.RecipientStore, records []*ports.Record, force bool) (int, error) {
	written := 0
	for _, rec := range records {
		if !force {
			_, err := store.Load(ctx, rec.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrRecipientNotFound) {
				return written, err
			}
		}
		if err := store.Save(ctx, rec); err != nil {
			return written, fmt.Errorf("save recipient %s: %w", rec.ID, err)
		}
		written++
	}
	return written, nil
}
