package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/graphadmin-backend/internal/app"
)

func main() {
	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	err = a.Run(ctx)
	if err != nil {
		a.Log.Error("server exited", "error", err)
	}
	a.Close()
	if err != nil {
		os.Exit(1)
	}
}
