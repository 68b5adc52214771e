// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"context"
	"sync"

	"github.com/poiesic/spansearch/core"
)

// Locker hands out one mutual-exclusion lock per address. Locks are created
// on first use and dropped once nobody holds or waits for them, so the map
// only ever contains addresses with work in flight.
type Locker struct {
	mu    sync.Mutex
	locks map[core.Address]*addressLock
}

type addressLock struct {
	sem  chan struct{}
	refs int
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[core.Address]*addressLock)}
}

// Lock blocks until the lock for address is held and returns its release
// function.
func (l *Locker) Lock(address core.Address) func() {
	unlock, _ := l.LockContext(context.Background(), address)
	return unlock
}

// LockContext is Lock with cancellation. When ctx ends before the lock is
// acquired the returned error is ctx.Err() and no lock is held.
func (l *Locker) LockContext(ctx context.Context, address core.Address) (func(), error) {
	entry := l.acquire(address)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(address, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(address, entry)
		})
	}, nil
}

// Len returns the number of addresses currently locked or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *Locker) acquire(address core.Address) *addressLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[address]
	if !ok {
		entry = &addressLock{sem: make(chan struct{}, 1)}
		l.locks[address] = entry
	}
	entry.refs++
	return entry
}

func (l *Locker) release(address core.Address, entry *addressLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, address)
	}
}
