package synth

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// RuleEntry is one serialized rule: fully parenthesized prefix notation,
// free variables carrying a leading '?'.
type RuleEntry struct {
	LHS           string `yaml:"lhs"`
	RHS           string `yaml:"rhs"`
	Bidirectional bool   `yaml:"bidirectional"`
	Iteration     int    `yaml:"iteration"`
}

// Report is the output artifact of one synthesis run.
type Report struct {
	Config    Config        `yaml:"config"`
	Elapsed   time.Duration `yaml:"elapsed"`
	RuleCount int           `yaml:"rule_count"`
	Unknown   int           `yaml:"unknown"`
	Stats     RunStats      `yaml:"stats"`
	Terms     int           `yaml:"terms"`
	Rules     []RuleEntry   `yaml:"rules"`
}

func (s *Synthesizer) report(elapsed time.Duration) *Report {
	rules := s.rules.Rules()
	entries := make([]RuleEntry, len(rules))
	for i, r := range rules {
		entries[i] = RuleEntry{
			LHS:           r.LHS.String(),
			RHS:           r.RHS.String(),
			Bidirectional: r.Bidirectional,
			Iteration:     r.Iteration,
		}
	}
	return &Report{
		Config:    s.cfg,
		Elapsed:   elapsed,
		RuleCount: len(entries),
		Unknown:   s.stats.Unknown,
		Stats:     s.stats,
		Terms:     s.store.Len(),
		Rules:     entries,
	}
}

// WriteText renders the report for human consumption.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "elapsed: %v\nterms: %d\nrules: %d\nunknown: %d\n",
		r.Elapsed.Round(time.Millisecond), r.Terms, r.RuleCount, r.Unknown); err != nil {
		return err
	}
	for _, e := range r.Rules {
		arrow := "=>"
		if e.Bidirectional {
			arrow = "<=>"
		}
		if _, err := fmt.Fprintf(w, "  %s %s %s\n", e.LHS, arrow, e.RHS); err != nil {
			return err
		}
	}
	return nil
}

// WriteYAML renders the full report, configuration included.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}
