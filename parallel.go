package tlrelay

import "golang.org/x/sync/errgroup"

// forEachToken calls fn for every text token index. With a concurrency
// above one, up to that many tokens are translated at once; each call
// writes only its own result slot, so output order is unaffected.
func (p *Pipeline) forEachToken(n int, fn func(i int)) {
	if p.concurrency <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
