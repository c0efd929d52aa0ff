package dedup

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/doppel/internal/bib"
)

// Pair is one duplicate pair found by a scan.
type Pair struct {
	A, B  *bib.Entry
	Score float64
}

// Group is a set of entries transitively connected by duplicate pairs,
// tagged with a generated ID.
type Group struct {
	ID      string
	Entries []*bib.Entry
}

// ScanOptions tunes a pairwise scan.
type ScanOptions struct {
	// Workers caps the comparison goroutines. Zero means GOMAXPROCS.
	Workers int
	// Progress, when set, is called after each compared pair with the
	// number done and the total. Calls are serialized.
	Progress func(done, total int)
}

// ScanPairs compares every unordered pair of entries under mode and
// returns the duplicate pairs in input order. Comparisons run across
// opts.Workers goroutines; a canceled ctx stops the scan early.
func (c *Checker) ScanPairs(ctx context.Context, entries []*bib.Entry, mode bib.Mode, opts ScanOptions) ([]Pair, error) {
	return c.scan(ctx, entries, entries, false, mode, opts)
}

// ScanAgainst compares every entry of entries with every entry of
// against under mode, for checking one library against another. Pair.A
// comes from entries and Pair.B from against; pairs within one side are
// not compared.
func (c *Checker) ScanAgainst(ctx context.Context, entries, against []*bib.Entry, mode bib.Mode, opts ScanOptions) ([]Pair, error) {
	return c.scan(ctx, entries, against, true, mode, opts)
}

// scan runs the comparison pool. With cross set it walks the full
// left x right grid; otherwise left and right are the same slice and
// only pairs above the diagonal are compared.
func (c *Checker) scan(ctx context.Context, left, right []*bib.Entry, cross bool, mode bib.Mode, opts ScanOptions) ([]Pair, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	total := len(left) * len(right)
	if !cross {
		total = len(left) * (len(left) - 1) / 2
	}

	type indexPair struct{ i, j int }
	type hit struct {
		indexPair
		score float64
	}

	feed := make(chan indexPair)
	var (
		mu   sync.Mutex
		hits []hit
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(feed)
		for i := 0; i < len(left); i++ {
			j := 0
			if !cross {
				j = i + 1
			}
			for ; j < len(right); j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				select {
				case feed <- indexPair{i, j}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for p := range feed {
				res := c.Compare(left[p.i], right[p.j], mode)
				mu.Lock()
				done++
				if res.Duplicate {
					hits = append(hits, hit{indexPair: p, score: res.Score})
				}
				if opts.Progress != nil {
					opts.Progress(done, total)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].i != hits[b].i {
			return hits[a].i < hits[b].i
		}
		return hits[a].j < hits[b].j
	})
	pairs := make([]Pair, len(hits))
	for k, h := range hits {
		pairs[k] = Pair{A: left[h.i], B: right[h.j], Score: h.score}
	}
	return pairs, nil
}

// GroupPairs merges transitively connected pairs into groups: if A
// duplicates B and B duplicates C, all three land in one group. Groups
// and their members keep first-appearance order; each group gets a
// fresh random ID.
func GroupPairs(pairs []Pair) []Group {
	parent := make(map[*bib.Entry]*bib.Entry)
	var find func(*bib.Entry) *bib.Entry
	find = func(e *bib.Entry) *bib.Entry {
		p, ok := parent[e]
		if !ok || p == e {
			parent[e] = e
			return e
		}
		root := find(p)
		parent[e] = root
		return root
	}

	var order []*bib.Entry
	seen := make(map[*bib.Entry]bool)
	for _, p := range pairs {
		for _, e := range [2]*bib.Entry{p.A, p.B} {
			if !seen[e] {
				seen[e] = true
				order = append(order, e)
			}
		}
		parent[find(p.A)] = find(p.B)
	}

	members := make(map[*bib.Entry][]*bib.Entry)
	var roots []*bib.Entry
	for _, e := range order {
		root := find(e)
		if members[root] == nil {
			roots = append(roots, root)
		}
		members[root] = append(members[root], e)
	}

	groups := make([]Group, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, Group{ID: uuid.NewString(), Entries: members[root]})
	}
	return groups
}
