/*
 * Copyright 2025 Gridstore
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ingest

import (
	"sync"
	"sync/atomic"

	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/gridstore-io/gridlink/types"
)

type ringEntry struct {
	url    string
	client *rowapi.Client
}

// workerRing round-robins batch dispatches across the worker endpoints of a
// multi-head cluster. A worker that failed a dispatch is skipped until a
// successful dispatch marks it up again or refresh installs a new worker set.
type workerRing struct {
	cursor atomic.Int64

	mu      sync.Mutex
	entries []ringEntry
	down    *types.Set[string]
}

func newWorkerRing(entries []ringEntry) *workerRing {
	return &workerRing{entries: entries, down: types.NewSet[string]()}
}

func (r *workerRing) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// next returns the next live worker in ring order. ok is false when the ring
// is empty or every worker is marked down.
func (r *workerRing) next() (*rowapi.Client, string, bool) {
	r.mu.Lock()
	entries := r.entries
	down := r.down
	r.mu.Unlock()

	for range entries {
		index := int(r.cursor.Add(1)-1) % len(entries)
		entry := entries[index]
		if !down.Exists(entry.url) {
			return entry.client, entry.url, true
		}
	}
	return nil, "", false
}

func (r *workerRing) markDown(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down.Insert(url)
}

func (r *workerRing) markUp(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down.Remove(url)
}

// refresh installs a newly discovered worker set. Every worker of the new set
// starts out live.
func (r *workerRing) refresh(entries []ringEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
	r.down = types.NewSet[string]()
}
