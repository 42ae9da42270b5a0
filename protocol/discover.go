package protocol

import (
	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/spf13/cobra"
)

// discoverCmd resolves the remote table type and emits it as a schema message.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "resolve the table type and emit it as a schema message",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		session, err := connector.Connect(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer func() { _ = session.Close() }()

		schema, err := session.ResolveTableType(cmd.Context(), nil)
		if err != nil {
			return err
		}

		logger.Infof("resolved %d columns of table %s", schema.Len(), config.TableRef())
		logger.Emit(types.Message{
			Type:   types.SchemaMessage,
			Schema: schema,
		})
		return nil
	},
}
