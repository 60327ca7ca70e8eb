// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)

	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry evicted")

	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	c.Remove("c")
	_, ok = c.Get("c")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad(t *testing.T) {
	c, err := NewLRU[string, int](4)
	require.NoError(t, err)

	loads := 0
	loader := func(key string) (int, error) {
		loads++
		if key == "bad" {
			return 0, errors.New("load failed")
		}
		return len(key), nil
	}

	v, err := c.GetOrLoad("four", loader)
	assert.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = c.GetOrLoad("four", loader)
	assert.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", loader)
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok, "failed loads are not cached")
}
