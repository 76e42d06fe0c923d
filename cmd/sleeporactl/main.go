// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command sleeporactl is the Sleepora operator CLI.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/taibuivan/sleepora/cmd/sleeporactl/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
