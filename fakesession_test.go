package main

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
)

// fakeDB is an in-memory stand-in for a database: it serves the rows of
// each table in pages and records every statement and copied row
type fakeDB struct {
	mu     sync.Mutex
	tables map[string][][]any // rows in fetch column order

	// failOn makes any statement starting with the prefix fail
	failOn     string
	connectErr error

	statements []string
	pageSizes  map[string][]int
	copied     map[string][][]any
	sessions   int
	open       int
	commits    int
	rollbacks  int
	// transactions begun, by access mode
	writeTx int
	readTx  int
}

func newFakeDB(tables map[string][][]any) *fakeDB {
	return &fakeDB{
		tables:    tables,
		pageSizes: map[string][]int{},
		copied:    map[string][][]any{},
	}
}

func (f *fakeDB) record(sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements = append(f.statements, sql)
	if f.failOn != "" && strings.HasPrefix(sql, f.failOn) {
		return errors.New("fake failure: " + sql)
	}
	return nil
}

func (f *fakeDB) Connect(_ context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return nil, &ConnectionError{Err: f.connectErr}
	}
	f.sessions++
	f.open++
	return &fakeSession{db: f}, nil
}

func (f *fakeDB) Close() {}

// statementsLike returns the recorded statements starting with prefix
func (f *fakeDB) statementsLike(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.statements {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}

type fakeSession struct {
	db *fakeDB
}

func (s *fakeSession) Begin(_ context.Context) (Tx, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.writeTx++
	return &fakeTx{db: s.db}, nil
}

func (s *fakeSession) BeginReadOnly(_ context.Context) (Tx, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.readTx++
	return &fakeTx{db: s.db}, nil
}

func (s *fakeSession) Dialect() Dialect { return DialectPostgres }

func (s *fakeSession) Close(_ context.Context) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.open--
	return nil
}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) error {
	return t.db.record(sql)
}

func (t *fakeTx) QueryInt(_ context.Context, sql string, _ ...any) (int64, error) {
	if err := t.db.record(sql); err != nil {
		return 0, err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	for name, rows := range t.db.tables {
		if strings.HasSuffix(sql, quoteTable(name)) {
			return int64(len(rows)), nil
		}
	}
	return 0, nil
}

func (t *fakeTx) Stream(_ context.Context, q SelectQuery) (Pager, error) {
	if err := t.db.record(DialectPostgres.selectSQL(q)); err != nil {
		return nil, err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	rows := make([][]any, 0, len(t.db.tables[q.Table]))
	for _, r := range t.db.tables[q.Table] {
		rows = append(rows, slices.Clone(r))
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return &fakePager{db: t.db, table: q.Table, rows: rows, size: q.PageSize}, nil
}

func (t *fakeTx) CopyRows(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	if err := t.db.record("COPY " + table); err != nil {
		return 0, err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	for _, r := range rows {
		t.db.copied[table] = append(t.db.copied[table], slices.Clone(r))
	}
	return int64(len(rows)), nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	if err := t.db.record("COMMIT"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.rollbacks++
	return nil
}

type fakePager struct {
	db    *fakeDB
	table string
	rows  [][]any
	size  int
}

func (p *fakePager) Next(_ context.Context) ([][]any, error) {
	n := min(p.size, len(p.rows))
	page := p.rows[:n]
	p.rows = p.rows[n:]
	p.db.mu.Lock()
	defer p.db.mu.Unlock()
	if n > 0 {
		p.db.pageSizes[p.table] = append(p.db.pageSizes[p.table], n)
	}
	return page, nil
}

func (p *fakePager) Close(_ context.Context) error { return nil }

// eventRecorder collects reported events
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) kind(k EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
