package main

import (
	"context"

	"salestracker/cmd/salestracker/commands"
	"salestracker/internal/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	err := commands.RootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		serviceutil.Fatal("salestracker failed", err)
	}
}
