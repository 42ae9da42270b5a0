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

package protocol

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/ingest"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils/flatten"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/gridstore-io/gridlink/utils/typeutils"
	"github.com/spf13/cobra"
)

// records sampled before ingestion starts, to infer a table type when the
// target does not exist yet
const inferenceSampleSize = 100

var loadInputPath string

// loadCmd ingests JSON lines into the target table.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "ingest JSON lines from a file or stdin",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := io.Reader(os.Stdin)
		if loadInputPath != "" {
			file, err := os.Open(loadInputPath)
			if err != nil {
				return fmt.Errorf("failed to open input file: %s", err)
			}
			defer file.Close()
			input = file
		}

		session, err := connector.NewSession(config)
		if err != nil {
			return err
		}
		defer func() { _ = session.Close() }()

		return runLoad(cmd.Context(), session, input)
	},
}

func runLoad(ctx context.Context, session *connector.Session, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	next := func() (types.Record, bool, error) {
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			record := types.Record{}
			if err := json.Unmarshal(line, &record); err != nil {
				return nil, false, fmt.Errorf("failed to decode input line: %s", err)
			}
			return record, true, nil
		}
		return nil, false, scanner.Err()
	}

	sample := []types.Record{}
	for len(sample) < inferenceSampleSize {
		record, found, err := next()
		if err != nil {
			return err
		}
		if !found {
			break
		}
		sample = append(sample, record)
	}

	schema, err := loadSchema(ctx, session, sample)
	if err != nil {
		return err
	}

	pool, err := ingest.Open(ctx, session, schema)
	if err != nil {
		return err
	}

	pushErr := func() error {
		for _, record := range sample {
			if err := pool.Push(ctx, record); err != nil {
				return err
			}
		}
		for {
			record, found, err := next()
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			if err := pool.Push(ctx, record); err != nil {
				return err
			}
		}
	}()

	// stats are emitted even when the run failed, so partial progress is
	// visible to the caller
	closeErr := pool.Close()
	stats := pool.Stats()
	logger.Emit(types.Message{
		Type:        types.IngestStatsMessage,
		IngestStats: &stats,
	})
	logger.Infof("load finished: %d seen, %d ingested, %d failed in %d batches",
		stats.Total, stats.Converted, stats.Failed, pool.Batches())

	if pushErr != nil {
		return pushErr
	}
	return closeErr
}

// loadSchema prefers the remote table type and falls back to inference from
// the sampled records when the table does not exist yet.
func loadSchema(ctx context.Context, session *connector.Session, sample []types.Record) (*types.TableSchema, error) {
	exists, err := session.TableExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return session.ResolveTableType(ctx, nil)
	}

	if len(sample) == 0 {
		return nil, fmt.Errorf("table %s does not exist and the input holds no records to infer its type from", config.TableRef())
	}

	records := sample
	if config.Flatten {
		records = make([]types.Record, len(sample))
		for i, record := range sample {
			flattened, err := flatten.Record(record)
			if err != nil {
				return nil, err
			}
			records[i] = flattened
		}
	}

	schema, err := typeutils.Resolve(records...)
	if err != nil {
		return nil, err
	}
	logger.Infof("inferred %d columns for new table %s from %d sampled records",
		schema.Len(), config.TableRef(), len(sample))
	return schema, nil
}

func init() {
	loadCmd.Flags().StringVarP(&loadInputPath, "input", "", "", "(Optional) JSONL input file, stdin when omitted")
}
