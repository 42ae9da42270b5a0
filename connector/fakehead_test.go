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

package connector

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/stretchr/testify/require"
)

// fakeHead is an in-memory head node serving the row API endpoints the
// connector uses. All state is guarded by mu so reader tests can run fetches
// while asserting on the request log.
type fakeHead struct {
	t  *testing.T
	mu sync.Mutex

	exists     bool
	info       rowapi.TableInfo
	properties map[string]string
	columns    []string
	rows       [][]any

	failGets int
	getCalls int
	limits   []int64
	created  []rowapi.CreateTableRequest
	cleared  []string
}

func newFakeHead(t *testing.T) (*fakeHead, *httptest.Server) {
	t.Helper()
	head := &fakeHead{t: t, properties: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/has/table", head.handleHasTable)
	mux.HandleFunc("/v1/show/table", head.handleShowTable)
	mux.HandleFunc("/v1/create/table", head.handleCreateTable)
	mux.HandleFunc("/v1/clear/table", head.handleClearTable)
	mux.HandleFunc("/v1/get/records", head.handleGetRecords)
	mux.HandleFunc("/v1/show/system/properties", head.handleProperties)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return head, server
}

func (f *fakeHead) ok(w http.ResponseWriter, data any) {
	f.t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{"status": "ok", "data": data})
	require.NoError(f.t, err)
}

func (f *fakeHead) handleHasTable(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok(w, map[string]bool{"exists": f.exists})
}

func (f *fakeHead) handleShowTable(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok(w, f.info)
}

func (f *fakeHead) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req rowapi.CreateTableRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	f.exists = true
	f.info = rowapi.TableInfo{
		Table:      req.Table,
		Collection: req.Collection,
		Replicated: req.Replicated,
		Columns:    req.Columns,
	}
	f.ok(w, nil)
}

func (f *fakeHead) handleClearTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table string `json:"table"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, req.Table)
	f.rows = nil
	f.info.TotalSize = 0
	f.ok(w, nil)
}

func (f *fakeHead) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	var req rowapi.GetRecordsRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failGets > 0 {
		f.failGets--
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	f.limits = append(f.limits, req.Limit)

	start := req.Offset
	if start > int64(len(f.rows)) {
		start = int64(len(f.rows))
	}
	end := start + req.Limit
	if end > int64(len(f.rows)) {
		end = int64(len(f.rows))
	}
	f.ok(w, rowapi.RecordsPage{Columns: f.columns, Rows: f.rows[start:end]})
}

func (f *fakeHead) handleProperties(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ok(w, map[string]any{"properties": f.properties})
}

func (f *fakeHead) chunkLimits() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64{}, f.limits...)
}

func (f *fakeHead) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func (f *fakeHead) createdTables() []rowapi.CreateTableRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rowapi.CreateTableRequest{}, f.created...)
}

func (f *fakeHead) clearedTables() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.cleared...)
}

func newTestClient(t *testing.T, serverURL string) *rowapi.Client {
	t.Helper()
	client, err := rowapi.NewClient(rowapi.Options{URLs: []string{serverURL}, Username: "tester"})
	require.NoError(t, err)
	return client
}

func testConfig(serverURL string) *Config {
	return &Config{
		URL:            serverURL,
		Username:       "tester",
		Table:          "events",
		TimeoutMS:      2000,
		RetryCount:     1,
		RetryBackoffMS: 1,
	}
}
