package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/plan"
)

// WriteText writes a plain listing of the schedule:
//
//	Batch 1
//	  schema     create tables
//	  backfill
//	Batch 2
//	  reindex
//
// Step descriptions come from p, which may be nil. Broken links are listed
// after the batches.
func WriteText(w io.Writer, p *plan.Plan, s *plan.Schedule) error {
	width := 0
	for _, b := range s.Batches {
		for _, id := range b {
			width = max(width, len(id))
		}
	}

	var sb strings.Builder
	for i, b := range s.Batches {
		if len(s.Batches) > 1 || len(b) > 0 {
			fmt.Fprintf(&sb, "Batch %d\n", i+1)
		}
		for _, id := range b {
			desc := describe(p, id)
			if desc == "" {
				fmt.Fprintf(&sb, "  %s\n", id)
				continue
			}
			fmt.Fprintf(&sb, "  %-*s  %s\n", width, id, desc)
		}
	}
	for _, l := range s.Broken {
		fmt.Fprintf(&sb, "broken: %s -> %s", l.From, l.To)
		if len(l.Reasons) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(l.Reasons, "; "))
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write text")
	}
	return nil
}

// WriteJSON encodes s as indented JSON.
func WriteJSON(w io.Writer, s *plan.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode schedule")
	}
	return nil
}

func describe(p *plan.Plan, id string) string {
	if p == nil {
		return ""
	}
	if s, ok := p.Step(id); ok {
		return s.Description
	}
	return ""
}
