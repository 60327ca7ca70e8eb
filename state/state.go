// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/veboost/cache"
	"github.com/vechain/veboost/kv"
	"github.com/vechain/veboost/stackedmap"
	"github.com/vechain/veboost/ve"
)

const (
	// StoragePrefix is the kv key prefix of contract storage.
	StoragePrefix = "s"

	defaultCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr ve.Address
	key  ve.Bytes32
}

func (k storageKey) dbKey() []byte {
	buf := make([]byte, 0, len(StoragePrefix)+ve.AddressLength+32)
	buf = append(buf, StoragePrefix...)
	buf = append(buf, k.addr[:]...)
	return append(buf, k.key[:]...)
}

// State manages the storage of builtin contracts.
type State struct {
	db    kv.Store
	cache *cache.LRU[storageKey, rlp.RawValue] // cache of committed values
	stats cache.Stats
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object.
func New(db kv.Store) *State {
	return NewWithCache(db, defaultCacheSize)
}

// NewWithCache create state object with the given read cache size.
func NewWithCache(db kv.Store, cacheSize int) *State {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, err := cache.NewLRU[storageKey, rlp.RawValue](cacheSize)
	if err != nil {
		panic(err) // size is always positive
	}
	s := &State{db: db, cache: c}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.cacheGetter)
	s.sm.Push()
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		s.stats.Hit()
		metricStorageAccess().AddWithLabel(1, map[string]string{"target": "cache"})
		return v, true, nil
	}
	s.stats.Miss()
	metricStorageAccess().AddWithLabel(1, map[string]string{"target": "db"})

	data, err := s.db.Get(key.dbKey())
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, false, err
		}
		data = nil
	}
	raw := rlp.RawValue(data)
	s.cache.Add(key, raw)
	return raw, true, nil
}

// CacheStats reports read cache lookups and whether the hit rate moved
// since the previous call.
func (s *State) CacheStats() (cache.Report, bool) {
	return s.stats.Report()
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr ve.Address, key ve.Bytes32) (ve.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return ve.Bytes32{}, err
	}
	if len(raw) == 0 {
		return ve.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return ve.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return ve.Blake2b(raw), nil
	}
	return ve.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr ve.Address, key, value ve.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr ve.Address, key ve.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
// Empty raw value deletes the slot.
func (s *State) SetRawStorage(addr ve.Address, key ve.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr ve.Address, key ve.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr ve.Address, key ve.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
// The base level is never popped.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		revision = 1
	}
	s.sm.PopTo(revision)
}

// Changes returns the count of slots modified since the last commit.
func (s *State) Changes() int {
	return len(s.changes())
}

func (s *State) changes() map[storageKey]rlp.RawValue {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return changes
}

// Commit writes all pending changes into the kv store atomically.
// It returns the count of written slots.
func (s *State) Commit() (int, error) {
	changes := s.changes()
	if len(changes) == 0 {
		return 0, nil
	}

	bulk := s.db.Bulk()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return 0, &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return 0, &Error{err}
	}
	for k, v := range changes {
		s.cache.Add(k, v)
	}
	metricStorageWrites().Add(int64(len(changes)))

	s.reset()
	return len(changes), nil
}
