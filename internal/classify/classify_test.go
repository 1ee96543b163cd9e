package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"filesort/internal/classify"
	"filesort/internal/config"
)

func TestClassifyDefaultTable(t *testing.T) {
	c := classify.New(config.DefaultCategories(), "")

	for _, category := range config.DefaultCategories() {
		for _, ext := range category.Extensions {
			require.Equal(t, category.Name, c.Classify(ext), "extension %s", ext)
		}
	}
	require.Equal(t, "Documents", c.Classify(".PDF"))
	require.Equal(t, "Images", c.Classify("JpEg"))
	require.Equal(t, "Others", c.Classify(".xyz"))
	require.Equal(t, "Others", c.Classify(""))
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c := classify.New([]config.Category{
		{Name: "Web", Extensions: []string{".html"}},
		{Name: "Code", Extensions: []string{".py", ".html"}},
	}, "Misc")

	require.Equal(t, "Web", c.Classify(".html"))
	require.Equal(t, "Code", c.Classify(".py"))
	require.Equal(t, "Misc", c.Classify(".bin"))
	require.Equal(t, "Misc", c.Others())
}

func TestClassifierCopiesTable(t *testing.T) {
	table := config.DefaultCategories()
	c := classify.New(table, "")
	table[0].Name = "Mutated"
	table[0].Extensions[0] = ".mutated"

	require.Equal(t, "Images", c.Classify(".jpg"))
	names := c.Categories()
	require.Equal(t, []string{"Images", "Documents", "Audio", "Videos", "Archives", "Code"}, names)

	names[0] = "changed"
	require.Equal(t, "Images", c.Categories()[0])
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Raw Photos", classify.DisplayName("raw photos"))
}
