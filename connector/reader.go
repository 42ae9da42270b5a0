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
	"context"
	"time"

	"github.com/gridstore-io/gridlink/constants"
	"github.com/gridstore-io/gridlink/pkg/rowapi"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils"
	"github.com/gridstore-io/gridlink/utils/logger"
)

// ReaderConfig sizes the chunked fetch loop of one partition reader.
type ReaderConfig struct {
	Table     types.TableRef
	Schema    *types.TableSchema
	Columns   []string // projection, defaults to every schema column
	FetchSize int64
	Retries   int
	Backoff   time.Duration
}

// PartitionReader streams the rows of one partition through bounded-size
// fetches. A reader is not safe for concurrent use; run one per partition.
type PartitionReader struct {
	client    *rowapi.Client
	mapper    *Mapper
	table     types.TableRef
	schema    *types.TableSchema
	columns   []string
	fetchSize int64
	retries   int
	backoff   time.Duration
}

func NewPartitionReader(client *rowapi.Client, mapper *Mapper, config ReaderConfig) *PartitionReader {
	columns := config.Columns
	if len(columns) == 0 {
		columns = config.Schema.Names()
	}
	fetchSize := config.FetchSize
	if fetchSize <= 0 {
		fetchSize = constants.DefaultFetchSize
	}
	backoff := config.Backoff
	if backoff <= 0 {
		backoff = constants.DefaultRetryBackoff
	}
	return &PartitionReader{
		client:    client,
		mapper:    mapper,
		table:     config.Table,
		schema:    config.Schema,
		columns:   columns,
		fetchSize: fetchSize,
		retries:   config.Retries,
		backoff:   backoff,
	}
}

// Read fetches the partition window chunk by chunk and hands every converted
// record to the handler in row order. Transient fetch failures are retried
// with the configured budget; a chunk that keeps failing surfaces as
// FetchError carrying the window. A short page ends the loop: the table
// shrank after planning and the remaining rows no longer exist.
func (r *PartitionReader) Read(ctx context.Context, partition types.Partition, handler types.RecordHandler) error {
	offset := partition.Offset
	remaining := partition.Count
	logger.Debugf("reading %s of table %s", partition, r.table)

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		count := remaining
		if count > r.fetchSize {
			count = r.fetchSize
		}

		var page *rowapi.RecordsPage
		err := utils.RetryExec(ctx, r.retries, r.backoff, func() error {
			fetched, fetchErr := r.client.GetRecords(ctx, rowapi.GetRecordsRequest{
				Table:   r.table.String(),
				Columns: r.columns,
				Offset:  offset,
				Limit:   count,
			})
			if fetchErr != nil {
				return fetchErr
			}
			page = fetched
			return nil
		})
		if err != nil {
			return &types.FetchError{Table: r.table.String(), Offset: offset, Count: count, Err: err}
		}

		if len(page.Rows) == 0 {
			logger.Warnf("table %s returned no rows at offset %d, expected %d more", r.table, offset, remaining)
			return nil
		}

		columns := page.Columns
		if len(columns) == 0 {
			columns = r.columns
		}
		for _, row := range page.Rows {
			record, err := r.mapper.FromRemoteRow(r.table.String(), r.schema, columns, row)
			if err != nil {
				return err
			}
			if err := handler(ctx, record); err != nil {
				return err
			}
		}

		offset += int64(len(page.Rows))
		remaining -= int64(len(page.Rows))
	}
	return nil
}
