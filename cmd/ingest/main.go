package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tuannm99/novaingest/client"
	"github.com/tuannm99/novaingest/internal"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML config file")
	timeout := flag.Duration("timeout", 10*time.Second, "overall deadline for the insert")
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	req, err := weatherRequest()
	if err != nil {
		log.Fatalf("build request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := client.Dial(ctx, cfg.ClientConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	rows, err := req.Submit(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("Rows written: %d\n", rows)
}
