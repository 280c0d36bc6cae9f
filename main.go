// main is the entry point for the timesplit CLI.
package main

import (
	"github.com/huangsam/timesplit/cmd"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/internal/store"
)

func main() {
	cmd.SetStoreManager(store.Manager)
	err := cmd.Execute()

	// LogFatal exits, so release the store and log file first.
	store.CloseStore()
	logging.Close()
	if err != nil {
		contract.LogFatal("timesplit", err)
	}
}
