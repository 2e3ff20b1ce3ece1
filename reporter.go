package trsgd

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/hupe1980/trsgd/codec"
	"github.com/hupe1980/trsgd/learner"
)

// Report is one progress record.
type Report struct {
	RunID     string    `json:"run_id"`
	Time      time.Time `json:"time"`
	Iteration uint64    `json:"iter"`
	Size      int       `json:"size"`
	SumWeight float64   `json:"weight"`
	Step      float64   `json:"step"`
	Loss      float64   `json:"loss"`
	Removed   int       `json:"removed"`
	Source    string    `json:"source,omitempty"`
	// NonFinite names the fields that were NaN or infinite. They are written as 0.
	NonFinite []string `json:"non_finite,omitempty"`
}

func newReport(runID, source string, s learner.Stats) Report {
	r := Report{
		RunID:     runID,
		Time:      time.Now().UTC(),
		Iteration: s.Iteration,
		Size:      s.Size,
		Removed:   s.Removed,
		Source:    source,
	}
	r.SumWeight = r.finite("weight", s.SumWeight)
	r.Step = r.finite("step", s.Step)
	r.Loss = r.finite("loss", s.Loss)
	return r
}

func (r *Report) finite(name string, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.NonFinite = append(r.NonFinite, name)
		return 0
	}
	return v
}

// Reporter appends reports to a writer, one encoded value per line.
type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	codec codec.Codec
}

// NewReporter creates a Reporter writing to w. A nil codec uses codec.Default.
func NewReporter(w io.Writer, c codec.Codec) *Reporter {
	if c == nil {
		c = codec.Default
	}
	return &Reporter{w: w, codec: c}
}

// Write encodes r as one line.
func (p *Reporter) Write(r Report) error {
	line, err := codec.AppendLine(nil, p.codec, r)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = p.w.Write(line)
	return err
}

// ReadReports decodes the reports written by a Reporter using c.
func ReadReports(r io.Reader, c codec.Codec) ([]Report, error) {
	if c == nil {
		c = codec.Default
	}
	var out []Report
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rep Report
		if err := c.Unmarshal(sc.Bytes(), &rep); err != nil {
			return nil, fmt.Errorf("report line %d: %w", n, err)
		}
		out = append(out, rep)
	}
	return out, sc.Err()
}
