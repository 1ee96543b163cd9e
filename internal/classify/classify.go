// Package classify maps file extensions to category names using an ordered
// category table.
package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"filesort/internal/config"
)

// DefaultOthers is the category used when no table entry matches.
const DefaultOthers = "Others"

// Classifier resolves extensions against an immutable category table. The
// first category listing an extension wins.
type Classifier struct {
	names  []string
	owners map[string]string
	others string
}

// New copies categories into a Classifier. An empty others name falls back
// to DefaultOthers.
func New(categories []config.Category, others string) *Classifier {
	others = strings.TrimSpace(others)
	if others == "" {
		others = DefaultOthers
	}
	c := &Classifier{
		names:  make([]string, 0, len(categories)),
		owners: make(map[string]string),
		others: others,
	}
	fold := cases.Fold()
	for _, category := range categories {
		c.names = append(c.names, category.Name)
		for _, ext := range category.Extensions {
			key := fold.String(config.NormalizeExtension(ext))
			if key == "" {
				continue
			}
			if _, taken := c.owners[key]; taken {
				continue
			}
			c.owners[key] = category.Name
		}
	}
	return c
}

// NewFromConfig builds a Classifier from the configured table.
func NewFromConfig(cfg *config.Config) *Classifier {
	if cfg == nil {
		return New(config.DefaultCategories(), DefaultOthers)
	}
	return New(cfg.Categories, cfg.Organize.OthersCategory)
}

// Classify returns the category for ext. The leading dot is optional and
// matching ignores case.
func (c *Classifier) Classify(ext string) string {
	key := cases.Fold().String(config.NormalizeExtension(ext))
	if name, ok := c.owners[key]; ok {
		return name
	}
	return c.others
}

// Categories returns the table's category names in match order.
func (c *Classifier) Categories() []string {
	return append([]string(nil), c.names...)
}

// Others returns the sentinel category name.
func (c *Classifier) Others() string {
	return c.others
}

// DisplayName title-cases a category name for report headings.
func DisplayName(name string) string {
	return cases.Title(language.English, cases.NoLower).String(name)
}
