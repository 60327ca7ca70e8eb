// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync"
)

// Goes tracks a group of background routines, such as servers and the keeper.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a go routine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// GoContext runs f with a context derived from parent. The returned stop
// function cancels that context and blocks until f has returned.
func (g *Goes) GoContext(parent context.Context, f func(ctx context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(parent)
	exited := make(chan struct{})
	g.Go(func() {
		defer close(exited)
		f(ctx)
	})
	return func() {
		cancel()
		<-exited
	}
}

// Wait waits for every routine started by Go or GoContext.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every routine has exited.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
