package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"degrader/pkg/pipeline"
)

type Summary struct {
	Total       int               `json:"total"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	SuccessRate string            `json:"success_rate"`
	BytesIn     bytesize.ByteSize `json:"bytes_in"`
	BytesOut    bytesize.ByteSize `json:"bytes_out"`
	Elapsed     time.Duration     `json:"elapsed"`
}

type Report struct {
	Results []*Result `json:"results"`
	Summary Summary   `json:"summary"`
}

// Expand crosses every source with every config set, sources outermost.
func Expand(sources []string, sets [][]pipeline.Config) []Request {
	reqs := make([]Request, 0, len(sources)*len(sets))
	for _, src := range sources {
		for _, set := range sets {
			reqs = append(reqs, Request{Source: src, Configs: set})
		}
	}
	return reqs
}

// Batch runs independent requests, at most the configured concurrency at a
// time. Each request gets its own pipeline, a failed one is recorded and
// does not stop the others.
func (r *Runner) Batch(ctx context.Context, reqs []Request) (*Report, error) {
	start := time.Now()
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{Status: StatusError, Source: req.Source, Error: err.Error()}
				return nil
			}
			results[i], _ = r.run(gctx, req, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{Results: results}
	s := &rep.Summary
	s.Total = len(results)
	for _, res := range results {
		if res.Status != StatusSuccess {
			s.Failed++
			continue
		}
		s.Successful++
		if res.Original != nil {
			s.BytesIn += res.Original.Size
		}
		if res.Processed != nil {
			s.BytesOut += res.Processed.Size
		}
	}
	s.SuccessRate = "0%"
	if s.Total > 0 {
		s.SuccessRate = fmt.Sprintf("%.1f%%", float64(s.Successful)/float64(s.Total)*100)
	}
	s.Elapsed = time.Since(start)

	r.logger.With(
		zap.Int("total", s.Total),
		zap.Int("successful", s.Successful),
		zap.Int("failed", s.Failed),
		zap.Stringer("out", s.BytesOut),
	).Info("batch done")
	return rep, ctx.Err()
}
