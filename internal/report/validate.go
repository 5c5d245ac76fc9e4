package report

import (
	"errors"
	"fmt"
)

// Validate checks the invariants every produced report must hold: unique
// names, consistent counts, and Categories being an exact partition of Results.
func (r *Report) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(r.Results))
	for _, rec := range r.Results {
		k := Key(rec.Name)
		if seen[k] {
			errs = append(errs, fmt.Errorf("duplicate record %q", rec.Name))
		}
		seen[k] = true
	}

	if r.Passed < 0 || r.Failed < 0 || r.Total < 0 {
		errs = append(errs, fmt.Errorf("negative count: passed=%d failed=%d total=%d", r.Passed, r.Failed, r.Total))
	}
	if r.Passed+r.Failed != r.Total {
		errs = append(errs, fmt.Errorf("passed(%d)+failed(%d) != total(%d)", r.Passed, r.Failed, r.Total))
	}
	if want := Percentage(r.Passed, r.Total); r.Percentage != want {
		errs = append(errs, fmt.Errorf("percentage %d, want %d", r.Percentage, want))
	}

	inCats := 0
	for name, recs := range r.Categories {
		for _, rec := range recs {
			inCats++
			if !seen[Key(rec.Name)] {
				errs = append(errs, fmt.Errorf("category %q holds unknown record %q", name, rec.Name))
			}
		}
	}
	if inCats != len(r.Results) {
		errs = append(errs, fmt.Errorf("categories hold %d records, results hold %d", inCats, len(r.Results)))
	}

	return errors.Join(errs...)
}
