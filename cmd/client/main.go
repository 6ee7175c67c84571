package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/projboard/projboard/internal/client/cli"
)

func main() {
	dbPath := flag.String("db", "projboard.db", "path to the device database")
	server := flag.String("server", "http://localhost:8080", "remote service base URL")
	flag.Parse()

	ctx := context.Background()

	app, err := cli.NewApp(ctx, *dbPath, *server, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
