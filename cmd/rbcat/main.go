package main

import (
	"os"

	"github.com/databricks/databricks-recordbatch-go/logger"
)

func main() {
	if err := NewRoot().Execute(); err != nil {
		logger.Err(err).Msg("rbcat failed")
		os.Exit(1)
	}
}
