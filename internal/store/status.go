package store

import (
	"fmt"

	"github.com/huangsam/timesplit/schema"
)

// PrintStatus prints interval store status information.
func PrintStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	if status.Target != "" {
		fmt.Printf("Target: %s\n", status.Target)
	}
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	fmt.Printf("Total Intervals: %d\n", status.TotalIntervals)
	if status.TotalIntervals > 0 {
		fmt.Printf("Branches: %d\n", status.TotalBranches)
		fmt.Printf("Sessions: %d\n", status.TotalSessions)
		fmt.Printf("Oldest Start: %s\n", schema.FormatTimestamp(status.OldestStartTime))
		fmt.Printf("Last End: %s\n", schema.FormatTimestamp(status.LastEndTime))
	}
}
