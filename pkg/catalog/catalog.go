// Package catalog seeds the candidate store with a curated starter list.
package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/tb0hdan/kmu-curator/pkg/moderation"
	"github.com/tb0hdan/kmu-curator/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Entry struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type Section struct {
	Department types.Department `yaml:"department"`
	Tools      []Entry          `yaml:"tools"`
}

type Catalog struct {
	Departments []Section `yaml:"departments"`
}

// Ingester is the part of the moderation workflow seeding needs.
type Ingester interface {
	IngestAll(ctx context.Context, reqs []moderation.IngestRequest) []string
}

// Default returns the embedded catalogue.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalogue and canonicalizes department names.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, section := range c.Departments {
		dept, err := types.ParseDepartment(string(section.Department))
		if err != nil {
			return nil, fmt.Errorf("catalog section %d: %w", i, err)
		}
		c.Departments[i].Department = dept
		for j, entry := range section.Tools {
			if entry.Name == "" {
				return nil, fmt.Errorf("catalog section %s entry %d: missing name", dept, j)
			}
		}
	}
	return &c, nil
}

func (c *Catalog) Len() int {
	n := 0
	for _, section := range c.Departments {
		n += len(section.Tools)
	}
	return n
}

// Requests converts the catalogue into pending ingestion requests.
func (c *Catalog) Requests() []moderation.IngestRequest {
	reqs := make([]moderation.IngestRequest, 0, c.Len())
	for _, section := range c.Departments {
		for _, entry := range section.Tools {
			reqs = append(reqs, moderation.IngestRequest{
				Query:          "AI tools for " + section.Department.String(),
				Department:     section.Department,
				Description:    entry.Description,
				ProvenanceNote: types.ProvenanceCuratedList,
				ToolName:       entry.Name,
				SourceURL:      entry.URL,
			})
		}
	}
	return reqs
}

// Seed ingests every entry and returns the created ids.
func (c *Catalog) Seed(ctx context.Context, ingester Ingester) []string {
	return ingester.IngestAll(ctx, c.Requests())
}
