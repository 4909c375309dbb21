package bbcode

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vse/abbc3-migrate/internal/errors"
)

//go:embed catalog.yaml
var catalogYAML []byte

var loadEmbedded = sync.OnceValues(func() ([]Definition, error) {
	return ParseCatalog(catalogYAML)
})

// Catalog returns the embedded ABBC3 catalog in seeding order.
// The returned slice is a copy and may be modified by the caller.
func Catalog() ([]Definition, error) {
	defs, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	return append([]Definition(nil), defs...), nil
}

// ParseCatalog decodes a YAML list of definitions. Every field is required
// and names must be unique ignoring case.
func ParseCatalog(data []byte) ([]Definition, error) {
	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, catalogError(fmt.Errorf("decode catalog: %w", err))
	}
	if len(defs) == 0 {
		return nil, catalogError(errors.NewStd("catalog is empty"))
	}

	seen := make(map[string]int, len(defs))
	for i, def := range defs {
		switch {
		case strings.TrimSpace(def.Name) == "":
			return nil, catalogError(fmt.Errorf("entry %d: name is empty", i))
		case strings.TrimSpace(def.Helpline) == "":
			return nil, catalogError(fmt.Errorf("entry %q: helpline is empty", def.Name))
		case strings.TrimSpace(def.Match) == "":
			return nil, catalogError(fmt.Errorf("entry %q: match is empty", def.Name))
		case strings.TrimSpace(def.Template) == "":
			return nil, catalogError(fmt.Errorf("entry %q: template is empty", def.Name))
		}

		key := lowerTag(def.Name)
		if prev, ok := seen[key]; ok {
			return nil, catalogError(fmt.Errorf("entry %q duplicates entry %d", def.Name, prev))
		}
		seen[key] = i
	}

	return defs, nil
}

func catalogError(err error) error {
	return errors.New(err).
		Component("bbcode").
		Category(errors.CategoryCatalog).
		Build()
}
