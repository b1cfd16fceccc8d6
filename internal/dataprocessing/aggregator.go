package dataprocessing

import (
	"log/slog"
	"sort"
	"time"

	"tribocli/pkg/contracts/domain"
)

// maxLoggedConflicts bounds the per-cell warnings of one aggregation
const maxLoggedConflicts = 20

// schemaGroup is the concatenation of all experiment tables sharing one column set
type schemaGroup struct {
	table   domain.Table
	sources []string // source label per row
}

// joinKey addresses a row of the joined table: a timestamp and its occurrence
// number within the group, so repeated timestamps pair up instead of multiplying
type joinKey struct {
	nanos      int64
	occurrence int
}

// joinedRow is one row of the joined table under construction
type joinedRow struct {
	ts      time.Time
	values  []domain.Value
	sources []string
}

// Aggregate merges the experiment tables of one resolution into one table.
// Tables with the same column set are concatenated; distinct column sets are
// outer-joined on the timestamp and the result sorted by timestamp. Cells two
// groups disagree on keep the first group's value and are reported as conflicts.
func Aggregate(res domain.Resolution, tables []domain.ExperimentTable, logger *slog.Logger) domain.AggregateResult {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "aggregator"), slog.String("resolution", res.String()))

	selected := make([]domain.ExperimentTable, 0, len(tables))
	for _, t := range tables {
		if t.Resolution != res {
			logger.Debug("Skipping table of other resolution",
				slog.String("source", t.Label()),
				slog.String("table_resolution", t.Resolution.String()))
			continue
		}
		selected = append(selected, t)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].ExperimentID != selected[j].ExperimentID {
			return selected[i].ExperimentID < selected[j].ExperimentID
		}
		return selected[i].Series < selected[j].Series
	})

	result := domain.AggregateResult{
		Resolution: res,
		Table:      domain.Table{Columns: []domain.Column{}},
		Sources:    make([]string, 0, len(selected)),
	}
	for _, t := range selected {
		result.Sources = append(result.Sources, t.Label())
	}
	if len(selected) == 0 {
		return result
	}

	groups := groupBySchema(selected)
	logger.Debug("Grouped tables by column set",
		slog.Int("tables", len(selected)),
		slog.Int("groups", len(groups)))

	if len(groups) == 1 {
		result.Table = groups[0].table
		return result
	}

	result.Table, result.Conflicts = joinGroups(groups)

	for i, c := range result.Conflicts {
		if i == maxLoggedConflicts {
			logger.Warn("Further conflicts not logged individually",
				slog.Int("remaining", len(result.Conflicts)-maxLoggedConflicts))
			break
		}
		logger.Warn("Conflicting values for the same timestamp and column",
			slog.Time("timestamp", c.Timestamp),
			slog.String("column", c.Column),
			slog.Float64("kept", c.Kept),
			slog.String("kept_from", c.KeptFrom),
			slog.Float64("dropped", c.Dropped),
			slog.String("dropped_from", c.DroppedFrom))
	}

	return result
}

// groupBySchema concatenates tables with the same column set, in order of
// first appearance. A group keeps the column order of its first table.
func groupBySchema(tables []domain.ExperimentTable) []schemaGroup {
	var order []string
	members := make(map[string][]domain.ExperimentTable)
	for _, t := range tables {
		key := t.Table.ColumnSetKey()
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], t)
	}

	groups := make([]schemaGroup, 0, len(order))
	for _, key := range order {
		list := members[key]
		parts := make([]domain.Table, len(list))
		var sources []string
		for i, t := range list {
			parts[i] = t.Table
			for range t.Table.Index {
				sources = append(sources, t.Label())
			}
		}
		groups = append(groups, schemaGroup{
			table:   concatTables(parts, list[0].Table.ColumnNames()),
			sources: sources,
		})
	}
	return groups
}

// joinGroups outer-joins the groups on (timestamp, occurrence) and sorts the
// result by timestamp. Rows keep their first-appearance order among equal timestamps.
func joinGroups(groups []schemaGroup) (domain.Table, []domain.JoinConflict) {
	tables := make([]domain.Table, len(groups))
	for i, g := range groups {
		tables[i] = g.table
	}
	names := unionColumns(tables)
	position := make(map[string]int, len(names))
	for i, name := range names {
		position[name] = i
	}

	var rows []*joinedRow
	byKey := make(map[joinKey]*joinedRow)
	var conflicts []domain.JoinConflict

	for _, g := range groups {
		occurrences := make(map[int64]int)
		for r, ts := range g.table.Index {
			key := joinKey{nanos: ts.UnixNano(), occurrence: occurrences[ts.UnixNano()]}
			occurrences[key.nanos]++

			row, ok := byKey[key]
			if !ok {
				row = &joinedRow{
					ts:      ts,
					values:  make([]domain.Value, len(names)),
					sources: make([]string, len(names)),
				}
				byKey[key] = row
				rows = append(rows, row)
			}

			for _, col := range g.table.Columns {
				v := col.Values[r]
				if v.IsMissing() {
					continue
				}
				p := position[col.Name]
				existing := row.values[p]
				switch {
				case existing.IsMissing():
					row.values[p] = v
					row.sources[p] = g.sources[r]
				case existing.Float != v.Float:
					conflicts = append(conflicts, domain.JoinConflict{
						Timestamp:   row.ts,
						Column:      col.Name,
						Kept:        existing.Float,
						KeptFrom:    row.sources[p],
						Dropped:     v.Float,
						DroppedFrom: g.sources[r],
					})
				}
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ts.Before(rows[j].ts)
	})

	out := domain.Table{
		Index:   make([]time.Time, len(rows)),
		Columns: make([]domain.Column, len(names)),
	}
	for i, name := range names {
		out.Columns[i] = domain.Column{Name: name, Values: make([]domain.Value, len(rows))}
	}
	for r, row := range rows {
		out.Index[r] = row.ts
		for c := range names {
			out.Columns[c].Values[r] = row.values[c]
		}
	}

	return out, conflicts
}
