package import_feature

// Aggregator accumulates per-row outcomes for one run. Errors keep the
// order they were recorded in so reports are reproducible.
type Aggregator struct {
	kind    EntityKind
	total   int
	created int
	updated int
	skipped int
	failed  int
	errors  []ImportError
}

func NewAggregator(kind EntityKind) *Aggregator {
	return &Aggregator{kind: kind}
}

// Record counts one successfully processed row.
func (a *Aggregator) Record(action RowAction) {
	a.total++
	switch action {
	case RowCreated:
		a.created++
	case RowUpdated:
		a.updated++
	case RowSkipped:
		a.skipped++
	}
}

// Fail counts one failed row. A row with several validation problems is
// still a single failure; every problem is reported.
func (a *Aggregator) Fail(errs ...*ImportError) {
	a.total++
	a.failed++
	for _, e := range errs {
		a.errors = append(a.errors, *e)
	}
}

// Result finalizes the run summary.
func (a *Aggregator) Result() *ImportResult {
	return &ImportResult{
		Kind:    a.kind,
		Total:   a.total,
		Created: a.created,
		Updated: a.updated,
		Skipped: a.skipped,
		Failed:  a.failed,
		Errors:  a.errors,
	}
}
