// envtool renders and checks the deployment environment file of the msgvis
// server.
package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}
