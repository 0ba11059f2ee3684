package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Options set how a schema is run
type Options struct {
	// DryRun samples and reports each table without writing anything
	DryRun bool
	// DryRunLimit caps the rows sampled per table in a dry run
	DryRunLimit int
	// Parallel runs one worker, with its own session, per table
	Parallel bool
	// Workers limits the number of tables run at once in parallel mode;
	// 0 runs every table at once
	Workers int
}

// Anonymizer runs the anonymisation described by a schema against the
// database reached through Connector
type Anonymizer struct {
	Registry  *Registry
	Connector Connector
	Reporter  Reporter
	Options   Options
}

func (a *Anonymizer) report(e Event) {
	if a.Reporter != nil {
		a.Reporter.Report(e)
	}
}

// Run validates the schema, truncates the tables listed for truncation
// and then anonymises each table, sequentially or in parallel.
//
// Sequentially, the first failing table aborts the run. In parallel a
// failing table does not stop the others and Run returns the failures
// of all tables joined. Each table is committed on its own, so tables
// finished before a failure stay anonymised.
func (a *Anonymizer) Run(ctx context.Context, schema *Schema) error {

	registry := a.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	plans, err := Validate(schema, registry, a.Options.Parallel)
	if err != nil {
		return err
	}

	s, err := a.Connector.Connect(ctx)
	if err != nil {
		return err
	}

	if err := a.truncate(ctx, s, schema.Truncate); err != nil {
		_ = s.Close(ctx)
		return err
	}

	if a.Options.Parallel {
		if err := s.Close(ctx); err != nil {
			return &ConnectionError{Err: err}
		}
		return a.runParallel(ctx, plans)
	}

	defer s.Close(ctx)
	for _, tp := range plans {
		if err := a.runTable(ctx, s, tp); err != nil {
			return err
		}
	}
	return nil
}

// truncate empties the named tables in one transaction, in the order
// given. A dry run only reports them.
func (a *Anonymizer) truncate(ctx context.Context, s Session, tables []string) (err error) {
	if len(tables) == 0 {
		return nil
	}
	if a.Options.DryRun {
		for _, t := range tables {
			a.report(Event{Kind: EventTruncated, Table: t, DryRun: true})
		}
		return nil
	}

	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()
	for _, t := range tables {
		if err := tx.Exec(ctx, s.Dialect().truncateSQL(t)); err != nil {
			return fmt.Errorf("truncate %s: %w", t, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("truncate commit: %w", err)
	}
	for _, t := range tables {
		a.report(Event{Kind: EventTruncated, Table: t})
	}
	return nil
}

// runParallel runs a worker per table and waits for all of them
func (a *Anonymizer) runParallel(ctx context.Context, plans []*tablePlan) error {
	var g errgroup.Group
	if a.Options.Workers > 0 {
		g.SetLimit(a.Options.Workers)
	}

	errs := make([]error, len(plans))
	for i, tp := range plans {
		g.Go(func() error {
			errs[i] = a.runWorker(ctx, tp)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// runWorker runs one table on a session of its own
func (a *Anonymizer) runWorker(ctx context.Context, tp *tablePlan) error {
	s, err := a.Connector.Connect(ctx)
	if err != nil {
		a.report(Event{Kind: EventTableFailed, Table: tp.Name, Err: err})
		return &TableError{Table: tp.Name, Err: err}
	}
	defer s.Close(ctx)
	return a.runTable(ctx, s, tp)
}
