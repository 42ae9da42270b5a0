package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridstore-io/gridlink/connector"
	"github.com/gridstore-io/gridlink/constants"
	"github.com/gridstore-io/gridlink/utils"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	logLevel   string
	config     *connector.Config

	commands = []*cobra.Command{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gridlink",
	Short: "Gridstore connector command line",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		viper.SetDefault(constants.ConfigFolder, os.TempDir())
		if configPath != "not-set" {
			viper.Set(constants.ConfigFolder, filepath.Dir(configPath))
		}
		if logLevel != "" {
			viper.Set(constants.LogLevel, logLevel)
		}

		// logger uses CONFIG_FOLDER for the rotating file
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'gridlink --help' to display usage guide", args[0])
		}

		return nil
	},
}

func CreateRootCommand() *cobra.Command {
	RootCmd.AddCommand(commands...)
	return RootCmd
}

// loadConfig deserializes the --config file; defaults and derived values are
// resolved by the session constructors through Config.Validate.
func loadConfig() error {
	if configPath == "not-set" {
		return fmt.Errorf("--config not passed")
	}

	config = &connector.Config{}
	return utils.UnmarshalFile(configPath, config, false)
}

func init() {
	commands = append(commands, checkCmd, discoverCmd, readCmd, countCmd, loadCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "not-set", "(Required) Connection config for the Gridstore deployment (JSON or YAML)")
	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "", "(Optional) Log level: debug, info, warn or error")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
