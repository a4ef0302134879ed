// Package seed loads catalog fixtures and generates demo users, friendships
// and ratings. It is meant for development and testing only.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"panoram/internal/models"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a movie fixture.
type catalogFile struct {
	Movies []models.Movie `yaml:"movies"`
}

// CatalogWriter persists catalog entries keyed by id.
type CatalogWriter interface {
	UpsertMany(ctx context.Context, movies []models.Movie) (int, error)
}

// LoadCatalog decodes a YAML catalog and rejects entries without an id or
// title as well as repeated ids.
func LoadCatalog(r io.Reader) ([]models.Movie, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return []models.Movie{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[int64]struct{}, len(file.Movies))
	for i := range file.Movies {
		m := &file.Movies[i]
		m.Title = strings.TrimSpace(m.Title)
		if m.ID <= 0 {
			return nil, fmt.Errorf("catalog entry %d: id must be positive", i)
		}
		if m.Title == "" {
			return nil, fmt.Errorf("catalog entry %d (id %d): title is required", i, m.ID)
		}
		if m.AverageRating < 0 || m.AverageRating > 10 {
			return nil, fmt.Errorf("catalog entry %d (id %d): averageRating out of range", i, m.ID)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %d", i, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Genres == nil {
			m.Genres = []string{}
		}
	}
	return file.Movies, nil
}

// LoadCatalogFile reads a catalog from path.
func LoadCatalogFile(path string) ([]models.Movie, error) {
	f, err := os.Open(path) // #nosec G304: operator-supplied fixture path
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalog(f)
}

// ImportCatalog writes movies in batches and returns how many documents
// were inserted or changed.
func ImportCatalog(ctx context.Context, store CatalogWriter, movies []models.Movie, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	total := 0
	for start := 0; start < len(movies); start += batchSize {
		end := min(start+batchSize, len(movies))
		n, err := store.UpsertMany(ctx, movies[start:end])
		if err != nil {
			return total, fmt.Errorf("import movies %d-%d: %w", start, end-1, err)
		}
		total += n
	}
	return total, nil
}
