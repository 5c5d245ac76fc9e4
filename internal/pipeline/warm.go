package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"voxlis/internal/cache"
	"voxlis/internal/report"
)

// WarmJob is one executor and kind to prefetch.
type WarmJob struct {
	Name string
	Kind report.Kind
}

// WarmResult is the outcome of one WarmJob.
type WarmResult struct {
	WarmJob
	Status  cache.Status
	Passed  int
	Total   int
	Source  string
	Elapsed time.Duration
	Err     error
}

// Jobs expands names into one job per kind.
func Jobs(names []string, kinds ...report.Kind) []WarmJob {
	jobs := make([]WarmJob, 0, len(names)*len(kinds))
	for _, n := range names {
		for _, k := range kinds {
			jobs = append(jobs, WarmJob{Name: n, Kind: k})
		}
	}
	return jobs
}

// Warm runs jobs through Report with at most parallel in flight. Failures
// are recorded per job; results keep the order of jobs.
func (s *Service) Warm(ctx context.Context, jobs []WarmJob, parallel int) []WarmResult {
	if parallel < 1 {
		parallel = 1
	}
	results := make([]WarmResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, job := range jobs {
		g.Go(func() error {
			start := time.Now()
			r, status, err := s.Report(gctx, job.Name, job.Kind)
			res := WarmResult{WarmJob: job, Status: status, Elapsed: time.Since(start), Err: err}
			if r != nil {
				res.Passed, res.Total, res.Source = r.Passed, r.Total, r.Source
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // errors captured in WarmResult.Err

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.InfoContext(ctx, "warm finished", "jobs", len(jobs), "failed", failed)
	return results
}
