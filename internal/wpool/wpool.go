// Package wpool is the bounded worker pool internal/compiler runs each
// compilation phase's fan-out on (Location Scanning, Definition Table
// Identify/Define/Ready, IR building), adapted from the teacher's
// pool/pool.go wrapping of github.com/panjf2000/ants/v2.
package wpool

import (
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPoolSize is used when a caller doesn't know or care how wide
	// to run (the teacher's DefaultAntsPoolSize, same rationale: small
	// enough to be a sane default for a one-shot CLI tool, not a server).
	DefaultPoolSize = 10

	// ExpiryDuration is the interval ants cleans up idle workers on.
	ExpiryDuration = 10 * time.Second
)

// Pool is the alias of ants.Pool.
type Pool = ants.Pool

// New instantiates a goroutine pool sized poolSize, or DefaultPoolSize if
// poolSize is 0 or negative.
func New(poolSize int) (*Pool, error) {
	return ants.NewPool(sizeOrDefault(poolSize), ants.WithOptions(ants.Options{ExpiryDuration: ExpiryDuration}))
}

func sizeOrDefault(poolSize int) int {
	if poolSize > 0 {
		return poolSize
	}
	return DefaultPoolSize
}

// RunEach submits one task per item to p, running up to p's capacity
// concurrently, and blocks until every task has finished, then returns the
// first task error (it returns early only if submitting to p fails) — the
// "phase barrier" every internal/compiler pass
// needs between Identify/Define/Ready/Build so the next phase never
// starts while the previous one is still filling in defs.Table, grounded
// on engine.go's Run (WaitGroup + errgroup.Group submitted through an
// ants.Pool, collecting the first error).
func RunEach[T any](p *Pool, items []T, task func(T) error) error {
	var wg sync.WaitGroup
	group := new(errgroup.Group)

	wg.Add(len(items))
	for _, item := range items {
		item := item
		if err := p.Submit(func() {
			group.Go(func() error {
				defer wg.Done()
				return task(item)
			})
		}); err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return group.Wait()
}
