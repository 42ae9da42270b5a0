package gridlink

import (
	"os"

	"github.com/gridstore-io/gridlink/protocol"
	"github.com/gridstore-io/gridlink/utils/logger"
	"github.com/gridstore-io/gridlink/utils/safego"
)

// Run executes the gridlink command line and exits the process when done.
func Run() {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand().Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
