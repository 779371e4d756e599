package scan

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch scans paths on at most workers goroutines (GOMAXPROCS when
// workers < 1). A failing or panicking image never stops the others; once
// ctx is done the remaining images are reported as canceled. Reports are
// returned in input order.
func (s *Scanner) Batch(ctx context.Context, paths []string, workers int) []*Report {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	reports := make([]*Report, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = s.scanOne(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}
	s.log.Info().Int("images", len(paths)).Int("failed", failed).Msg("batch done")
	return reports
}

func (s *Scanner) scanOne(ctx context.Context, path string) (rep *Report) {
	if err := ctx.Err(); err != nil {
		return (&Report{Source: path}).fail(StageCanceled, err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("file", path).Interface("panic", r).Msg("skipping image")
			rep = (&Report{Source: path}).fail(StagePanic, fmt.Errorf("panic: %v", r))
		}
	}()
	return s.ScanFile(ctx, path)
}
