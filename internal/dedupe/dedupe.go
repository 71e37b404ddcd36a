// Package dedupe collapses multiple transcriptions of the same subject into a
// single representative annotation.
//
// For each subject with several annotations the engine scores every pair by
// cosine similarity of their term-frequency vectors, takes the first pair with
// the highest score, and keeps one member of that pair chosen by a coin flip.
// There is no similarity threshold: a multi-annotation subject always resolves
// to exactly one of its own annotations, however weakly they agree.
package dedupe

import (
	"github.com/sells-group/transcribe-cli/internal/model"
	"github.com/sells-group/transcribe-cli/internal/similarity"
	"github.com/sells-group/transcribe-cli/internal/textnorm"
)

// Engine normalizes and resolves annotation records. It holds no state
// between calls other than its Chooser.
type Engine struct {
	normalizer *textnorm.Normalizer
	chooser    Chooser
}

// Option configures an Engine.
type Option func(*Engine)

// WithChooser sets the tie-break source.
func WithChooser(c Chooser) Option {
	return func(e *Engine) {
		if c != nil {
			e.chooser = c
		}
	}
}

// WithSeed uses a seeded random Chooser.
func WithSeed(seed uint64) Option {
	return WithChooser(NewRandChooser(seed))
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *textnorm.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// New creates an Engine. Without options it uses the built-in boilerplate
// fragments and a clock-seeded Chooser.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		e.normalizer = textnorm.New()
	}
	if e.chooser == nil {
		e.chooser = NewTimeChooser()
	}
	return e
}

// Normalize returns a cleaned copy of records. The input slice is not
// modified.
func (e *Engine) Normalize(records []model.Annotation) []model.Annotation {
	out := make([]model.Annotation, len(records))
	for i, r := range records {
		out[i] = model.Annotation{SubjectID: r.SubjectID, Text: e.normalizer.Normalize(r.Text)}
	}
	return out
}

// Resolve collapses already-normalized records to one per subject id, in
// first-seen subject order.
func (e *Engine) Resolve(records []model.Annotation) []model.Annotation {
	resolved, _ := e.ResolveDetailed(records)
	return resolved
}

// ResolveDetailed is Resolve plus a Resolution per subject describing the
// winning pair.
func (e *Engine) ResolveDetailed(records []model.Annotation) ([]model.Annotation, []model.Resolution) {
	groups := GroupBySubject(records)
	resolved := make([]model.Annotation, 0, len(groups))
	details := make([]model.Resolution, 0, len(groups))
	for _, g := range groups {
		res := e.resolveGroup(g)
		resolved = append(resolved, model.Annotation{SubjectID: g.SubjectID, Text: g.Texts[res.Chosen]})
		details = append(details, res)
	}
	return resolved, details
}

// Run normalizes raw records and resolves them.
func (e *Engine) Run(raw []model.Annotation) ([]model.Annotation, []model.Resolution) {
	return e.ResolveDetailed(e.Normalize(raw))
}

func (e *Engine) resolveGroup(g Group) model.Resolution {
	res := model.Resolution{
		SubjectID:  g.SubjectID,
		GroupSize:  len(g.Texts),
		PairFirst:  -1,
		PairSecond: -1,
	}
	if len(g.Texts) == 1 {
		return res
	}

	pair := BestPair(g.Texts)
	res.BestScore = pair.Score
	res.PairFirst = pair.First
	res.PairSecond = pair.Second
	if e.chooser.PickFirst() {
		res.Chosen = pair.First
	} else {
		res.Chosen = pair.Second
	}
	return res
}

// Pair identifies two members of a group by index, First < Second.
type Pair struct {
	First  int
	Second int
	Score  float64
}

// BestPair returns the most similar pair among texts. Each text is vectorized
// once. Ties keep the earliest pair in (i, j) order, and since the search
// starts below zero, the first pair wins when every score is 0. texts must
// hold at least two entries.
func BestPair(texts []string) Pair {
	vectors := make([]similarity.TermVector, len(texts))
	for i, t := range texts {
		vectors[i] = similarity.VectorizeText(t)
	}

	best := Pair{First: -1, Second: -1, Score: -1}
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sim := similarity.Cosine(vectors[i], vectors[j])
			if sim > best.Score {
				best = Pair{First: i, Second: j, Score: sim}
			}
		}
	}
	return best
}
