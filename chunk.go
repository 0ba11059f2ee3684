package main

import (
	"context"
	"fmt"
	"slices"
)

// chunkProcessor runs the field providers of one table over the pages of
// a read of that table. It keeps no rows between pages.
type chunkProcessor struct {
	plan   *tablePlan
	report func(Event)
	dryRun bool

	pages   int
	fetched int64
	staged  int64
}

// stageFunc receives each transformed page, for example to copy it into
// the staging table
type stageFunc func(ctx context.Context, rows [][]any) error

// run pulls pages from pager until it is exhausted, transforming each and
// passing it to stage. Cancellation is honoured between pages only, so a
// page is either staged in full or not at all.
func (c *chunkProcessor) run(ctx context.Context, pager Pager, stage stageFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := pager.Next(ctx)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", c.pages+1, err)
		}
		if len(page) == 0 {
			return nil
		}

		rows, err := c.transformPage(page)
		if err != nil {
			return err
		}
		if err := stage(ctx, rows); err != nil {
			return err
		}

		c.pages++
		c.fetched += int64(len(page))
		c.staged += int64(len(rows))
		c.report(Event{
			Kind:   EventPageProcessed,
			Table:  c.plan.Name,
			Page:   c.pages,
			Rows:   int64(len(page)),
			Staged: int64(len(rows)),
			DryRun: c.dryRun,
		})

		// a short page is the last one
		if len(page) < c.plan.ChunkSize {
			return nil
		}
	}
}

// transformPage applies the providers to each row of a page, in field
// order, skipping fields excluded for the row. Exclusions are decided on
// the row as fetched, never on values written by earlier fields. It
// returns the selection columns of the rows with at least one field
// changed; rows with every field excluded are left out of the staging
// table entirely.
func (c *chunkProcessor) transformPage(page [][]any) ([][]any, error) {
	tp := c.plan
	out := make([][]any, 0, len(page))

	for _, values := range page {
		if len(values) != len(tp.fetch) {
			return nil, fmt.Errorf("row has %d columns, expected %d", len(values), len(tp.fetch))
		}
		row := &Row{
			Table:       tp.Name,
			ColumnNames: tp.fetch,
			Values:      values,
			Key:         values[0],
		}
		fetched := &Row{
			Table:       tp.Name,
			ColumnNames: tp.fetch,
			Values:      slices.Clone(values),
			Key:         values[0],
		}

		changed := false
		for _, fp := range tp.Fields {
			if isExcluded(fp.Excludes, fetched) {
				continue
			}
			v, err := fp.Provider.Provide(row.Values[fp.colNo], row)
			if err != nil {
				return nil, &ProviderExecutionError{
					Table:  tp.Name,
					Column: fp.Column,
					Key:    row.Key,
					Err:    err,
				}
			}
			if fp.Append != "" {
				if s, ok := textValue(v); ok {
					v = s + fp.Append
				}
			}
			row.Values[fp.colNo] = v
			changed = true
		}

		if changed {
			out = append(out, row.Values[:len(tp.selection)])
		}
	}
	return out, nil
}
