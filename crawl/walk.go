package crawl

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// walk drives the crawl from seed using a stack of pending URLs.
//
// The coordinator (the calling goroutine) owns the stack: it pops a URL,
// applies the scope and visited checks, and hands it to one of
// concurrency workers. Results come back to the coordinator, which calls
// handle and pushes the page's links in reverse so the first link on the
// page is popped next. With a single worker this is exactly a pre-order
// depth-first walk in document order.
//
// skip is called for every out-of-scope URL popped. walk returns when the
// stack is empty and no page is in flight, or when ctx is done.
func (c *Crawler) walk(
	ctx context.Context,
	seed string,
	concurrency int,
	visited *VisitedSet,
	skip func(url string),
	handle func(page *pageResult),
) error {
	stack := []string{seed}

	// Channels for worker coordination
	workCh := make(chan string)
	resultCh := make(chan pageResult)

	g, gctx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			for url := range workCh {
				result := c.processURL(gctx, url)
				select {
				case resultCh <- result:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	pending := 0 // URLs currently being processed

coordinatorLoop:
	for {
		if ctx.Err() != nil {
			break coordinatorLoop
		}

		// Dispatch while there are idle workers and pending URLs
		for pending < concurrency && len(stack) > 0 {
			url := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !c.Scope.Contains(url) {
				skip(url)
				continue
			}
			if !visited.MarkIfNotVisited(url) {
				continue
			}

			select {
			case <-ctx.Done():
				break coordinatorLoop
			case workCh <- url:
				pending++
			}
		}

		if pending == 0 {
			break coordinatorLoop
		}

		select {
		case <-ctx.Done():
			break coordinatorLoop
		case page := <-resultCh:
			pending--
			handle(&page)
			for i := len(page.links) - 1; i >= 0; i-- {
				stack = append(stack, page.links[i])
			}
		}
	}

	// Signal workers to stop; any still sending see gctx done
	close(workCh)
	_ = g.Wait()

	return ctx.Err()
}
