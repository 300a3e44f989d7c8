// Command fetch-data downloads the Geonames dumps used to build the index.
//
// Usage:
//
//	go run ./cmd/fetch-data [-dir ./geolookup-data]
//
// Files already present in the directory are left untouched; delete them to
// force a fresh download.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/andreiashu/geolookup"
)

func main() {
	dir := flag.String("dir", "./geolookup-data", "directory for raw data files")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Fetching geonames data into %s...\n", *dir)

	if err := geolookup.Download(ctx, geolookup.WithDataDir(*dir)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, src := range geolookup.DefaultSources {
		path := filepath.Join(*dir, filepath.Base(src.Path))
		fi, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-22s %10d bytes\n", filepath.Base(path), fi.Size())
	}
	fmt.Println("Data fetched successfully.")
}
