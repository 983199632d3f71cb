// Command snapshot uploads a JSON dump of the user collection to S3, or lists existing dumps.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"user-registry/internal/bootstrap"
	"user-registry/internal/config"
	"user-registry/internal/service"
)

func main() {
	list := flag.Bool("list", false, "list stored snapshots instead of taking one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.NewSnapshotStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup snapshot store: %v", err)
	}

	if *list {
		objects, err := store.List(ctx)
		if err != nil {
			logger.Fatalf("list snapshots: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
		for _, obj := range objects {
			modified := "-"
			if obj.LastModified != nil {
				modified = obj.LastModified.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", obj.Key, obj.Size, modified)
		}
		w.Flush()
		return
	}

	users, closeUsers, err := bootstrap.OpenUsers(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open user store: %v", err)
	}
	defer closeUsers()

	location, count, err := service.NewSnapshotService(users, store, logger).Take(ctx)
	if err != nil {
		closeUsers()
		logger.Fatalf("take snapshot: %v", err)
	}
	fmt.Printf("%d users written to %s\n", count, location)
}
