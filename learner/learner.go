package learner

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/trsgd/feature"
	"github.com/hupe1980/trsgd/paramstore"
)

const (
	// ValueWidth is the number of values stored per weight.
	ValueWidth = 2

	slotWeight = 0
	slotHits   = 1
)

// Stats summarizes training since the last ResetStats.
type Stats struct {
	Iteration uint64
	Size      int
	SumWeight float64
	// Step is the effective learning rate eta·StepSize.
	Step float64
	// Loss is the weighted mean log-loss, or 0 before any record was seen.
	Loss float64
	// Removed counts weights dropped by truncation.
	Removed int
}

// Learner is a sparse logistic-regression model trained online.
type Learner struct {
	params    Params
	spaces    []*paramstore.Map[float32]
	intercept float64
	iter      uint64
	eta       float64

	sumLoss   float64
	sumWeight float64
	removed   int

	opts    options
	logger  *slog.Logger
	nanDiag rate.Sometimes
}

// New creates a learner with nSpace empty feature spaces.
func New(nSpace int, params Params, opts ...Option) (*Learner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	if nSpace < 0 || nSpace > o.maxSpaces {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManySpaces, nSpace, o.maxSpaces)
	}
	l := &Learner{
		params:  params,
		eta:     1,
		opts:    o,
		logger:  o.logger,
		nanDiag: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	for range nSpace {
		if err := l.AddSpace(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Params returns the hyperparameters.
func (l *Learner) Params() Params { return l.params }

// Iteration returns the number of updates taken.
func (l *Learner) Iteration() uint64 { return l.iter }

// SetIteration sets the update counter, for resuming a run.
func (l *Learner) SetIteration(n uint64) {
	l.iter = n
	if n > 0 {
		l.eta = math.Pow(1/float64(n), l.params.PowerEta)
	}
}

// Eta returns the current learning-rate decay factor.
func (l *Learner) Eta() float64 { return l.eta }

// Intercept returns the bias term.
func (l *Learner) Intercept() float64 { return l.intercept }

// NumSpaces returns the number of feature spaces.
func (l *Learner) NumSpaces() int { return len(l.spaces) }

// Space returns the weight table of space i.
func (l *Learner) Space(i int) *paramstore.Map[float32] { return l.spaces[i] }

// Size returns the number of stored weights across all spaces.
func (l *Learner) Size() int {
	n := 0
	for _, m := range l.spaces {
		n += m.Len()
	}
	return n
}

// AddSpace appends an empty feature space.
func (l *Learner) AddSpace() error {
	if len(l.spaces) >= l.opts.maxSpaces {
		return fmt.Errorf("%w: max %d", ErrTooManySpaces, l.opts.maxSpaces)
	}
	m, err := l.newSpace()
	if err != nil {
		return err
	}
	l.spaces = append(l.spaces, m)
	return nil
}

// RemoveSpace drops the last feature space.
func (l *Learner) RemoveSpace() {
	if n := len(l.spaces); n > 0 {
		l.spaces[n-1] = nil
		l.spaces = l.spaces[:n-1]
	}
}

func (l *Learner) newSpace() (*paramstore.Map[float32], error) {
	return paramstore.New[float32](ValueWidth, l.opts.spaceCapacity)
}

// Weight returns the stored weight of key in space, or 0.
func (l *Learner) Weight(space uint32, key uint64) (float32, error) {
	if int(space) >= len(l.spaces) {
		return 0, nil
	}
	v, err := l.spaces[space].Get(key)
	if err != nil {
		return 0, err
	}
	return v[slotWeight], nil
}

// Predict returns the linear score of rec. Features of unknown spaces are ignored.
func (l *Learner) Predict(rec *feature.Record) (float64, error) {
	f := l.intercept
	for _, ft := range rec.Features {
		if int(ft.Space) >= len(l.spaces) {
			continue
		}
		v, err := l.spaces[ft.Space].Get(ft.Key)
		if err != nil {
			return 0, fmt.Errorf("space %d: %w", ft.Space, err)
		}
		f += float64(v[slotWeight]) * float64(ft.Value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		l.nanDiag.Do(func() {
			l.logger.Debug("non-finite score", "score", f, "iteration", l.iter, "features", len(rec.Features))
		})
	}
	return f, nil
}

// Digest scores rec and adds its loss to the running statistics. With update set it
// also takes one gradient step and, every K-th step, a truncation sweep.
func (l *Learner) Digest(rec *feature.Record, update bool) (float64, error) {
	f, err := l.Predict(rec)
	if err != nil {
		return 0, err
	}
	l.sumLoss += rec.Weight * logLoss(rec.Label, f)
	l.sumWeight += rec.Weight
	if !update {
		return f, nil
	}

	l.iter++
	l.eta = math.Pow(1/float64(l.iter), l.params.PowerEta)
	if err := l.update(rec, f); err != nil {
		return f, err
	}
	if l.iter%uint64(l.params.K) == 0 {
		if _, err := l.Truncate(); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (l *Learner) update(rec *feature.Record, f float64) error {
	p := 1 / (1 + math.Exp(-rec.Label*f))
	d := rec.Weight * l.params.StepSize * l.eta * (p - 1) * rec.Label
	l.intercept -= d
	for _, ft := range rec.Features {
		if int(ft.Space) >= len(l.spaces) {
			continue
		}
		v, err := l.spaces[ft.Space].GetOrInsert(ft.Key)
		if err != nil {
			return fmt.Errorf("space %d: %w", ft.Space, err)
		}
		v[slotWeight] = float32(float64(v[slotWeight]) - d*float64(ft.Value))
		v[slotHits]++
	}
	return nil
}

// Truncate runs one truncation sweep and returns the number of removed weights.
func (l *Learner) Truncate() (int, error) {
	alpha := float64(l.params.K) * l.params.StepSize * l.eta * l.params.Gravity
	theta := l.params.Threshold
	removed := 0
	for s, m := range l.spaces {
		for p := m.Begin(); p != m.End(); {
			v := m.Values(p)
			w := float64(v[slotWeight])
			switch {
			case w >= 0 && w < theta:
				v[slotWeight] = float32(w - alpha)
				if v[slotWeight] <= 0 {
					next, err := m.Erase(p)
					if err != nil {
						return removed, fmt.Errorf("space %d: %w", s, err)
					}
					removed++
					p = next
					continue
				}
			case w <= 0 && w > -theta:
				v[slotWeight] = float32(w + alpha)
				if v[slotWeight] >= 0 {
					next, err := m.Erase(p)
					if err != nil {
						return removed, fmt.Errorf("space %d: %w", s, err)
					}
					removed++
					p = next
					continue
				}
			}
			p = m.Next(p)
		}
	}
	l.removed += removed
	return removed, nil
}

// Stats returns the statistics accumulated since the last reset.
func (l *Learner) Stats() Stats {
	s := Stats{
		Iteration: l.iter,
		Size:      l.Size(),
		SumWeight: l.sumWeight,
		Step:      l.eta * l.params.StepSize,
		Removed:   l.removed,
	}
	if l.sumWeight > 0 {
		s.Loss = l.sumLoss / l.sumWeight
	}
	return s
}

// ResetStats clears the running sums.
func (l *Learner) ResetStats() {
	l.sumLoss = 0
	l.sumWeight = 0
	l.removed = 0
}

// logLoss is log(1+exp(-y·f)), stable for large margins.
func logLoss(y, f float64) float64 {
	z := -y * f
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
