package cli

import (
	"fmt"

	"github.com/cvforge/cvchat/internal/metrics"
)

// printStats renders a session metrics snapshot as a plain table.
func printStats(snap metrics.Snapshot) {
	fmt.Printf("\nSession statistics (%.0fs):\n", snap.UptimeSeconds)
	printOp("commands", snap.Execute)
	printOp("suggestions", snap.Suggest)
	printOp("sign-ins", snap.SignIn)
	printOp("downloads", snap.Download)
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("  %-12s %3d calls", name, op.Count)
	if op.Failures > 0 {
		fmt.Printf(" (%d failed)", op.Failures)
	}
	fmt.Printf("  avg %.0fms  min %dms  max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
