package protocol

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/spf13/cobra"
)

var readColumns string

// readCmd exports the table as record messages, one JSON line per row. The
// planned partitions are read in parallel, so rows of different partitions
// interleave on stdout.
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "export table rows as record messages",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		session, err := connector.NewSession(config)
		if err != nil {
			return err
		}
		defer func() { _ = session.Close() }()

		ctx := cmd.Context()
		schema, err := session.ResolveTableType(ctx, nil)
		if err != nil {
			return err
		}
		total, err := session.RowCount(ctx)
		if err != nil {
			return err
		}

		partitions := connector.PlanPartitions(total, config.PartitionCount)
		if len(partitions) == 0 {
			logger.Infof("table %s is empty, nothing to read", config.TableRef())
			return nil
		}

		client, err := session.Client()
		if err != nil {
			return err
		}
		mapper := connector.NewMapper(config.Location())
		readerConfig := connector.ReaderConfig{
			Table:     config.TableRef(),
			Schema:    schema,
			FetchSize: int64(config.FetchSize),
			Retries:   config.RetryCount,
			Backoff:   config.RetryBackoff(),
		}
		for _, column := range strings.Split(readColumns, ",") {
			if column = strings.TrimSpace(column); column != "" {
				readerConfig.Columns = append(readerConfig.Columns, column)
			}
		}

		logger.Infof("reading %d rows of table %s across %d partitions", total, config.TableRef(), len(partitions))
		var exported atomic.Int64
		err = utils.Concurrent(ctx, partitions, config.MaxThreads, func(ctx context.Context, partition types.Partition, _ int) error {
			reader := connector.NewPartitionReader(client, mapper, readerConfig)
			return reader.Read(ctx, partition, func(_ context.Context, record types.Record) error {
				logger.Emit(types.Message{
					Type:   types.RecordMessage,
					Record: record,
				})
				exported.Add(1)
				return nil
			})
		})
		if err != nil {
			return err
		}

		logger.Infof("exported %d rows of table %s", exported.Load(), config.TableRef())
		return nil
	},
}

func init() {
	readCmd.Flags().StringVarP(&readColumns, "columns", "", "", "(Optional) Comma separated projection, defaults to every column")
}
