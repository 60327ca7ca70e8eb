// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/veboost/co"
)

func fired(w co.Waiter) bool {
	select {
	case <-w.C():
		return true
	default:
		return false
	}
}

func TestSignal_BroadcastBeforeWait(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	var n int
	for _, w := range ws {
		if !fired(w) {
			n++
		}
	}
	assert.Equal(t, 10, n)
}

func TestSignal_BroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}

	sig.Broadcast()

	for _, w := range ws {
		<-w.C()
	}
}

func TestSignal_WaiterRearms(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()

	sig.Broadcast()
	assert.True(t, fired(w))
	assert.False(t, fired(w))

	sig.Broadcast()
	assert.True(t, fired(w))
}

func TestGoes(t *testing.T) {
	var goes co.Goes
	var n atomic.Int32
	for range 5 {
		goes.Go(func() { n.Add(1) })
	}
	<-goes.Done()
	assert.Equal(t, int32(5), n.Load())

	stop := goes.GoContext(context.Background(), func(ctx context.Context) {
		<-ctx.Done()
		n.Add(1)
	})
	stop()
	assert.Equal(t, int32(6), n.Load())
	goes.Wait()
}
