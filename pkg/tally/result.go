package tally

import "time"

// Partial is the counting output of a single batch before merging. It is
// immutable once returned by a worker and crosses process boundaries as
// JSON in isolated-process mode.
type Partial struct {
	Lines      int64            `json:"lines"`
	LinesByExt map[string]int64 `json:"lines_by_ext"`
	FilesByExt map[string]int64 `json:"files_by_ext"`
}

// NewPartial returns an empty Partial ready for accumulation.
func NewPartial() Partial {
	return Partial{
		LinesByExt: make(map[string]int64),
		FilesByExt: make(map[string]int64),
	}
}

// AddFile records one counted file. Files without countable lines leave the
// partial untouched and are not counted as files.
func (p *Partial) AddFile(ext string, lines int64) {
	if lines <= 0 {
		return
	}

	p.Lines += lines
	p.LinesByExt[ext] += lines
	p.FilesByExt[ext]++
}

// Merge folds other into p. Merging is commutative and associative, so the
// order in which batch results arrive does not affect the outcome. A
// zero-value Partial merges as identity.
func (p *Partial) Merge(other Partial) {
	p.Lines += other.Lines

	for ext, lines := range other.LinesByExt {
		if p.LinesByExt == nil {
			p.LinesByExt = make(map[string]int64)
		}

		p.LinesByExt[ext] += lines
	}

	for ext, files := range other.FilesByExt {
		if p.FilesByExt == nil {
			p.FilesByExt = make(map[string]int64)
		}

		p.FilesByExt[ext] += files
	}
}

// Aggregate is the run-wide total. It is owned by the coordinating
// goroutine and mutated only through Add; workers never touch it.
type Aggregate struct {
	Root          string           `json:"root" yaml:"root"`
	Lines         int64            `json:"lines" yaml:"lines"`
	LinesByExt    map[string]int64 `json:"lines_by_ext" yaml:"lines_by_ext"`
	FilesByExt    map[string]int64 `json:"files_by_ext" yaml:"files_by_ext"`
	Batches       int              `json:"batches" yaml:"batches"`
	FailedBatches int              `json:"failed_batches,omitempty" yaml:"failed_batches,omitempty"`
	Elapsed       time.Duration    `json:"-" yaml:"-"`
}

// NewAggregate returns an empty Aggregate ready for merging.
func NewAggregate() *Aggregate {
	return &Aggregate{
		LinesByExt: make(map[string]int64),
		FilesByExt: make(map[string]int64),
	}
}

// Add merges one batch result into the total.
func (a *Aggregate) Add(p Partial) {
	a.Lines += p.Lines

	for ext, lines := range p.LinesByExt {
		a.LinesByExt[ext] += lines
	}

	for ext, files := range p.FilesByExt {
		a.FilesByExt[ext] += files
	}

	a.Batches++
}

// TotalFiles returns the number of files that contributed lines.
func (a *Aggregate) TotalFiles() int64 {
	var files int64

	for _, n := range a.FilesByExt {
		files += n
	}

	return files
}
