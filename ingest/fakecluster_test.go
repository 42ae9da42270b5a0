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
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/gridstore-io/gridlink/types"
)

// fakeHead fakes the row API surface the ingest path touches: table lookup
// and description for PrepareTable, system properties for worker discovery
// and record insertion on the head node itself. Every insert request is
// recorded, including the ones answered with an error.
type fakeHead struct {
	t *testing.T

	mu          sync.Mutex
	exists      bool
	info        rowapi.TableInfo
	properties  map[string]string
	failInserts int
	inserts     []rowapi.InsertRecordsRequest
}

func newFakeHead(t *testing.T) (*fakeHead, *httptest.Server) {
	t.Helper()

	fake := &fakeHead{
		t:      t,
		exists: true,
		info: rowapi.TableInfo{
			Table: "events",
			Columns: []rowapi.ColumnSpec{
				{Name: "id", Type: "long", Key: true},
				{Name: "name", Type: "string", Nullable: true},
			},
		},
		properties: map[string]string{"version.core": "7.2.1"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/has/table", fake.handleHasTable)
	mux.HandleFunc("/v1/show/table", fake.handleShowTable)
	mux.HandleFunc("/v1/insert/records", fake.handleInsertRecords)
	mux.HandleFunc("/v1/show/system/properties", fake.handleSystemProperties)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return fake, server
}

func ok(w http.ResponseWriter, data any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "data": data})
}

func (f *fakeHead) handleHasTable(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	exists := f.exists
	f.mu.Unlock()
	ok(w, map[string]bool{"exists": exists})
}

func (f *fakeHead) handleShowTable(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	info := f.info
	f.mu.Unlock()
	ok(w, info)
}

func (f *fakeHead) handleInsertRecords(w http.ResponseWriter, r *http.Request) {
	var request rowapi.InsertRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.inserts = append(f.inserts, request)
	fail := f.failInserts > 0
	if fail {
		f.failInserts--
	}
	f.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	ok(w, rowapi.InsertResult{CountInserted: int64(len(request.Rows))})
}

func (f *fakeHead) handleSystemProperties(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	properties := make(map[string]string, len(f.properties))
	for key, value := range f.properties {
		properties[key] = value
	}
	f.mu.Unlock()
	ok(w, map[string]any{"properties": properties})
}

func (f *fakeHead) setProperty(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.properties[key] = value
}

func (f *fakeHead) insertRequests() []rowapi.InsertRecordsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rowapi.InsertRecordsRequest{}, f.inserts...)
}

func (f *fakeHead) batchSizes() []int {
	sizes := []int{}
	for _, request := range f.insertRequests() {
		sizes = append(sizes, len(request.Rows))
	}
	return sizes
}

// fakeWorker is a bare insert endpoint standing in for one cluster worker.
type fakeWorker struct {
	mu       sync.Mutex
	fail     bool
	attempts int
	batches  []int
}

func newFakeWorker(t *testing.T) (*fakeWorker, *httptest.Server) {
	t.Helper()

	worker := &fakeWorker{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/insert/records", worker.handleInsert)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return worker, server
}

func (fw *fakeWorker) handleInsert(w http.ResponseWriter, r *http.Request) {
	var request rowapi.InsertRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fw.mu.Lock()
	fw.attempts++
	fail := fw.fail
	if !fail {
		fw.batches = append(fw.batches, len(request.Rows))
	}
	fw.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	ok(w, rowapi.InsertResult{CountInserted: int64(len(request.Rows))})
}

func (fw *fakeWorker) attemptCount() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.attempts
}

func (fw *fakeWorker) batchSizes() []int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return append([]int{}, fw.batches...)
}

func poolConfig(serverURL string) *connector.Config {
	return &connector.Config{
		URL:            serverURL,
		Username:       "tester",
		Table:          "events",
		BatchSize:      2,
		MaxThreads:     1,
		RetryCount:     1,
		RetryBackoffMS: 1,
		TimeoutMS:      2000,
	}
}

func poolSchema() *types.TableSchema {
	return types.NewTableSchema(
		types.Column{Name: "id", Type: types.INT64, PrimaryKey: true},
		types.Column{Name: "name", Type: types.STRING, Nullable: true},
	)
}
