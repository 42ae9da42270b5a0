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

// Package ingest turns an unbounded record stream into size-bounded positional
// batches and dispatches them to a Gridstore cluster, round-robined across the
// worker endpoints when multi-head ingestion is enabled.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils"
	"github.com/gridstore-io/gridlink/utils/flatten"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Pool ingests records into one table. Records arrive through Push, are
// converted to positional rows and grouped into batches of at most the
// configured batch size; a batch is dispatched when full and flushed at
// stream end. The three progress counters only ever increase and are safe to
// read while the pool runs.
type Pool struct {
	session *connector.Session
	mapper  *connector.Mapper
	schema  *types.TableSchema
	columns []string
	table   string
	runID   string

	batchSize   int
	retries     int
	backoff     time.Duration
	upsert      bool
	dryRun      bool
	failOnError bool
	flatten     bool

	head *rowapi.Client
	ring *workerRing

	records  chan types.Record
	group    *errgroup.Group
	groupCtx context.Context

	total     atomic.Int64
	converted atomic.Int64
	failed    atomic.Int64
	batches   atomic.Int64

	mu       sync.Mutex
	failures error
}

// Open prepares the target table for the configured write mode, discovers the
// worker topology when multi-head is enabled and starts the dispatch workers.
func Open(ctx context.Context, session *connector.Session, schema *types.TableSchema) (*Pool, error) {
	config := session.Config()

	if err := session.PrepareTable(ctx, schema); err != nil {
		return nil, err
	}
	head, err := session.Client()
	if err != nil {
		return nil, err
	}

	pool := &Pool{
		session:     session,
		mapper:      connector.NewMapper(config.Location()),
		schema:      schema,
		columns:     schema.Names(),
		table:       config.TableRef().String(),
		runID:       utils.ULID(),
		batchSize:   config.BatchSize,
		retries:     config.RetryCount,
		backoff:     config.RetryBackoff(),
		upsert:      config.ResolvedWriteMode().Upserts(),
		dryRun:      config.DryRun,
		failOnError: config.FailOnError,
		flatten:     config.Flatten,
		head:        head,
		records:     make(chan types.Record, config.BatchSize),
	}

	if config.MultiHead {
		urls, err := session.WorkerURLs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to discover ingest workers: %s", err)
		}
		entries, err := buildEntries(config, urls)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			pool.ring = newWorkerRing(entries)
			logger.Infof("run %s ingests across %d workers", pool.runID, len(entries))
		} else {
			logger.Warnf("multi-head requested but the cluster advertises no workers, using the head node")
		}
	}

	pool.group, pool.groupCtx = errgroup.WithContext(ctx)
	for i := 0; i < config.MaxThreads; i++ {
		pool.group.Go(pool.worker)
	}
	return pool, nil
}

func buildEntries(config *connector.Config, urls []string) ([]ringEntry, error) {
	entries := make([]ringEntry, 0, len(urls))
	for _, workerURL := range urls {
		tlsConfig, err := config.SSLConfig.BuildTLSConfig(hostnameOf(workerURL))
		if err != nil {
			return nil, err
		}
		client, err := rowapi.NewClient(rowapi.Options{
			URLs:        []string{workerURL},
			Username:    config.Username,
			Password:    config.Password,
			Timeout:     config.Timeout(),
			Compression: config.Compression,
			TLS:         tlsConfig,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build client for worker %s: %s", workerURL, err)
		}
		entries = append(entries, ringEntry{url: workerURL, client: client})
	}
	return entries, nil
}

func hostnameOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// Push adds one record in arrival order. It blocks while every batch is full
// and fails once ingestion has aborted. Push must not be called after Close.
func (p *Pool) Push(ctx context.Context, record types.Record) error {
	p.total.Add(1)

	if p.flatten {
		flattened, err := flatten.Record(record)
		if err != nil {
			p.failed.Add(1)
			if p.failOnError {
				return err
			}
			p.recordFailure(err)
			return nil
		}
		record = flattened
	}

	select {
	case p.records <- record:
		return nil
	case <-p.groupCtx.Done():
		return p.group.Wait()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker drains the record channel into a private batch and dispatches it
// whenever it reaches the batch size. Rows keep arrival order within a batch;
// no order is guaranteed across workers.
func (p *Pool) worker() error {
	batch := make([][]any, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := p.dispatch(batch)
		batch = batch[:0]
		return err
	}

	for {
		select {
		case <-p.groupCtx.Done():
			return p.groupCtx.Err()
		case record, ok := <-p.records:
			if !ok {
				return flush()
			}
			row, err := p.mapper.ToRemoteRow(p.table, p.schema, record)
			if err != nil {
				p.failed.Add(1)
				if p.failOnError {
					return err
				}
				p.recordFailure(err)
				continue
			}
			batch = append(batch, row)
			if len(batch) >= p.batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// dispatch sends one batch with the configured retry budget. Every retry
// carries identical batch contents; with upsert semantics a retried batch
// that partially landed stays free of duplicates. On a multi-head ring each
// attempt may pick a different live worker.
func (p *Pool) dispatch(rows [][]any) error {
	p.batches.Add(1)
	if p.dryRun {
		p.converted.Add(int64(len(rows)))
		return nil
	}

	request := rowapi.InsertRecordsRequest{
		Table:               p.table,
		Columns:             p.columns,
		Rows:                rows,
		UpdateOnExistingKey: p.upsert,
	}

	err := utils.RetryExec(p.groupCtx, p.retries, p.backoff, func() error {
		client, workerURL := p.pickClient()
		result, err := client.InsertRecords(p.groupCtx, request)
		if err != nil {
			if workerURL != "" {
				p.ring.markDown(workerURL)
				logger.Warnf("worker %s failed a batch, skipping it: %s", workerURL, err)
			}
			return err
		}
		if workerURL != "" {
			p.ring.markUp(workerURL)
		}
		logger.Debugf("run %s dispatched %d rows (%d inserted, %d updated)",
			p.runID, len(rows), result.CountInserted, result.CountUpdated)
		return nil
	})
	if err != nil {
		p.failed.Add(int64(len(rows)))
		err = fmt.Errorf("batch of %d rows failed: %s", len(rows), err)
		if p.failOnError {
			return err
		}
		p.recordFailure(err)
		return nil
	}

	p.converted.Add(int64(len(rows)))
	return nil
}

// pickClient returns the dispatch target for one attempt: the head node when
// multi-head is off, otherwise the next live ring worker. When every worker
// is down the topology is rediscovered once before falling back to the head.
func (p *Pool) pickClient() (*rowapi.Client, string) {
	if p.ring == nil {
		return p.head, ""
	}
	if client, workerURL, ok := p.ring.next(); ok {
		return client, workerURL
	}

	if urls, err := p.session.WorkerURLs(p.groupCtx); err == nil && len(urls) > 0 {
		if entries, err := buildEntries(p.session.Config(), urls); err == nil {
			p.ring.refresh(entries)
			if client, workerURL, ok := p.ring.next(); ok {
				return client, workerURL
			}
		}
	}
	logger.Warnf("every ingest worker is down, falling back to the head node")
	return p.head, ""
}

func (p *Pool) recordFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = multierror.Append(p.failures, err)
}

// Stats returns a snapshot of the progress counters.
func (p *Pool) Stats() types.IngestStats {
	return types.IngestStats{
		Total:     p.total.Load(),
		Converted: p.converted.Load(),
		Failed:    p.failed.Load(),
	}
}

// Batches returns how many batches have been dispatched so far.
func (p *Pool) Batches() int64 {
	return p.batches.Load()
}

// Close flushes every partial batch, stops the workers and returns the
// failures of the run: the first error in fail-fast mode, otherwise every
// batch and conversion failure aggregated.
func (p *Pool) Close() error {
	close(p.records)
	if err := p.group.Wait(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}
