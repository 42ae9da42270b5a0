package protocol

import (
	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/spf13/cobra"
)

var countFilter string

// countCmd pushes the filter down to the SQL gateway and reports the count.
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "count the rows matching an optional filter",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := types.ParseFilter(countFilter)
		if err != nil {
			return err
		}

		session, err := connector.NewSession(config)
		if err != nil {
			return err
		}
		defer func() { _ = session.Close() }()

		total, err := session.Count(cmd.Context(), filter)
		if err != nil {
			return err
		}

		logger.Infof("table %s holds %d matching rows", config.TableRef(), total)
		logger.Emit(types.Message{
			Type:   types.RecordMessage,
			Record: types.Record{"count": total},
		})
		return nil
	},
}

func init() {
	countCmd.Flags().StringVarP(&countFilter, "filter", "", "", `(Optional) Row filter, e.g. 'age >= 18 and name = "gridstore"'`)
}
