package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	apperrors "tribocli/internal/errors"
	"tribocli/pkg/contracts/domain"
)

// PartTable is one parsed part of an experiment series
type PartTable struct {
	File  domain.RawFile
	Table domain.Table
}

// CombineParts concatenates the parts of one experiment series at one resolution
// in part order. The base part (index 0) must be present. Columns are the union of
// all parts in first-appearance order; cells a part does not carry are missing.
// Timestamps are never de-duplicated. Inputs are not modified.
func CombineParts(parts []PartTable) (domain.Table, error) {
	if len(parts) == 0 {
		return domain.Table{Columns: []domain.Column{}}, nil
	}

	ordered := make([]PartTable, len(parts))
	copy(ordered, parts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].File.PartIndex < ordered[j].File.PartIndex
	})

	group := fmt.Sprintf("%s/%s", ordered[0].File.Label(), ordered[0].File.Resolution)
	if ordered[0].File.PartIndex != 0 {
		paths := make([]string, len(ordered))
		for i, p := range ordered {
			paths[i] = p.File.Path
		}
		return domain.Table{}, apperrors.NewMissingBaseError(group, paths)
	}

	for i, p := range ordered {
		if p.File.GroupKey() != ordered[0].File.GroupKey() {
			return domain.Table{}, apperrors.NewAppValidationError(
				fmt.Sprintf("part %s does not belong to %s", p.File.Path, group))
		}
		if i > 0 && p.File.PartIndex == ordered[i-1].File.PartIndex {
			return domain.Table{}, apperrors.NewClassificationConflict(
				fmt.Sprintf("%s part %d", group, p.File.PartIndex), ordered[i-1].File.Path, p.File.Path)
		}
		if err := p.Table.Validate(); err != nil {
			return domain.Table{}, apperrors.NewAppValidationError(err.Error()).WithContext("path", p.File.Path)
		}
	}

	if len(ordered) == 1 {
		return ordered[0].Table.Clone(), nil
	}

	tables := make([]domain.Table, len(ordered))
	for i, p := range ordered {
		tables[i] = p.Table
	}
	return concatTables(tables, unionColumns(tables)), nil
}

// unionColumns returns every column name of the tables in first-appearance order
func unionColumns(tables []domain.Table) []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
	}
	return names
}

// concatTables stacks the rows of the tables under the given columns.
// A column a table does not carry is filled with missing markers.
func concatTables(tables []domain.Table, names []string) domain.Table {
	rows := 0
	for _, t := range tables {
		rows += t.Len()
	}

	out := domain.Table{
		Index:   make([]time.Time, 0, rows),
		Columns: make([]domain.Column, len(names)),
	}
	for i, name := range names {
		out.Columns[i] = domain.Column{Name: name, Values: make([]domain.Value, 0, rows)}
	}

	for _, t := range tables {
		out.Index = append(out.Index, t.Index...)
		for i, name := range names {
			if col, ok := t.Column(name); ok {
				out.Columns[i].Values = append(out.Columns[i].Values, col.Values...)
				continue
			}
			for range t.Index {
				out.Columns[i].Values = append(out.Columns[i].Values, domain.Missing())
			}
		}
	}

	return out
}
