package main

import (
	"context"

	"github.com/orderdesk/backend/internal/logging"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Fatal("migrate failed", "error", err)
	}
}
