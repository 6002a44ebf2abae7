package conflicts

import (
	"fmt"
	"strings"
)

// ConflictError is returned by the detector step when the report is not
// empty. Its message lists every conflict with all of its contributors.
type ConflictError struct {
	Report Report
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d output conflict(s)", e.Report.Len())
	if len(e.Report.PathConflicts) > 0 {
		b.WriteString("\nmultiple sources write the same output file:")
		for _, c := range e.Report.PathConflicts {
			fmt.Fprintf(&b, "\n  %s", c.DistPath)
			for _, s := range c.Sources {
				fmt.Fprintf(&b, "\n    - %s", s)
			}
		}
	}
	if len(e.Report.URLConflicts) > 0 {
		b.WriteString("\nmultiple output files are served at the same URL:")
		for _, c := range e.Report.URLConflicts {
			fmt.Fprintf(&b, "\n  %s", c.URLPath)
			for _, d := range c.DistPaths {
				fmt.Fprintf(&b, "\n    - %s", d)
			}
		}
	}
	return b.String()
}
