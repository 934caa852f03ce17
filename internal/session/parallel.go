package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/flowactivate/internal/flow"
	"github.com/ziadkadry99/flowactivate/internal/sfcli"
	"github.com/ziadkadry99/flowactivate/internal/ui"
)

type orgJob struct {
	org  string
	cred sfcli.Credential
}

// executeParallel resolves every credential up front, in org order, so a
// fatal credential failure still stops the run before any flow is touched.
// Per-org activation loops then run concurrently and their status lines are
// flushed in org order once all of them finish.
func (c *Controller) executeParallel(ctx context.Context, orgs, flows []string) (*Summary, error) {
	summary := &Summary{}

	var jobs []orgJob
	for _, org := range orgs {
		cred, skip, err := c.resolve(ctx, org, summary)
		if err != nil {
			return summary, err
		}
		if !skip {
			jobs = append(jobs, orgJob{org: org, cred: cred})
		}
	}

	c.reporter.Start(len(jobs) * len(flows))

	var (
		mu   sync.Mutex
		done int
	)
	outcomes := make([][]flow.Outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			for _, name := range flows {
				out := c.act.Activate(gctx, name, job.cred)
				outcomes[i] = append(outcomes[i], out)

				mu.Lock()
				done++
				c.reporter.Update(done, job.org+"/"+name)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	c.reporter.Finish()

	for i, job := range jobs {
		for _, out := range outcomes[i] {
			summary.Results = append(summary.Results, Result{Org: job.org, Outcome: out})
			fmt.Fprintln(c.out, ui.StatusLine(job.org, out))
		}
	}
	return summary, nil
}
