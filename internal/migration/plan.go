package migration

import (
	"strings"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// Order sorts migrations so every migration follows its dependencies.
// Independent migrations keep their input order. Duplicate names, unknown
// dependencies and cycles are configuration errors.
func Order(migrations []Migration) ([]Migration, error) {
	byName := make(map[string]int, len(migrations))
	for i, m := range migrations {
		if _, dup := byName[m.Name()]; dup {
			return nil, planError("duplicate migration %q", m.Name())
		}
		byName[m.Name()] = i
	}

	waiting := make([]int, len(migrations)) // unmet dependency count
	dependents := make([][]int, len(migrations))
	for i, m := range migrations {
		for _, dep := range m.DependsOn() {
			j, ok := byName[dep]
			if !ok {
				return nil, planError("migration %q depends on unknown migration %q", m.Name(), dep)
			}
			waiting[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]Migration, 0, len(migrations))
	placed := make([]bool, len(migrations))
	for len(ordered) < len(migrations) {
		next := -1
		for i := range migrations {
			if !placed[i] && waiting[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, planError("dependency cycle between migrations: %s", strings.Join(unplaced(migrations, placed), ", "))
		}
		placed[next] = true
		ordered = append(ordered, migrations[next])
		for _, d := range dependents[next] {
			waiting[d]--
		}
	}
	return ordered, nil
}

func unplaced(migrations []Migration, placed []bool) []string {
	var names []string
	for i, m := range migrations {
		if !placed[i] {
			names = append(names, m.Name())
		}
	}
	return names
}

func planError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("migration").
		Category(errors.CategoryConfiguration).
		Build()
}
