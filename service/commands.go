package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"folio/app/backup"
	"folio/app/config"
	"folio/app/logger"
)

// HandleCommand runs a subcommand and returns the process exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "serve":
		return serve()
	case "backup":
		return runBackup(args[1:])
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(args[1])
	case "migrate":
		return migrate(args[1:])
	case "stats":
		return stats()
	case "help":
		printHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: folio <command> [options]

Commands:
  serve                 Run the post API (and STATIC_DIR, if set)
  backup [file]         Write a snapshot of every post to file, or to data/backups
                        and S3_BUCKET when no file is given
  restore <source>      Import a snapshot from a file or s3://bucket/key
  migrate [file]        Import a legacy posts.json (default DATA_FILE) into STORE
  stats                 Print post counts for the configured store
  version               Show version information
  help                  Display this help message

Configuration is read from the environment and from .env when present.`
	fmt.Println(helpText)
}

// setup loads the configuration, printing any error for the user.
func setup() (*config.Config, bool) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	return cfg, true
}

func serve() int {
	cfg, ok := setup()
	if !ok {
		return 1
	}
	if err := RunAppServer(context.Background(), cfg, logger.New()); err != nil {
		fmt.Printf("Server error: %v\n", err)
		return 1
	}
	return 0
}

// runBackup writes one snapshot. With no target it goes to a timestamped
// file under data/backups, and to S3 when a bucket is configured.
func runBackup(args []string) int {
	cfg, ok := setup()
	if !ok {
		return 1
	}
	ctx := context.Background()
	log := logger.New()

	var sinks []backup.Sink
	if len(args) > 0 {
		sinks = append(sinks, backup.NewFileSink(args[0]))
	} else {
		name := fmt.Sprintf("posts_%d.json", time.Now().Unix())
		sinks = append(sinks, backup.NewFileSink(filepath.Join("data", "backups", name)))
		if cfg.S3Bucket != "" {
			client, err := backup.NewS3Client(cfg)
			if err != nil {
				fmt.Printf("Failed to configure S3: %v\n", err)
				return 1
			}
			sinks = append(sinks, backup.NewS3Sink(client, cfg.S3Bucket, cfg.S3Prefix))
		}
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		fmt.Printf("Failed to open %s store: %v\n", cfg.Store, err)
		return 1
	}
	defer store.Close()

	if _, err := backup.NewWorker(store, 0, log, sinks...).RunOnce(ctx); err != nil {
		fmt.Printf("Failed to back up posts: %v\n", err)
		return 1
	}
	for _, sink := range sinks {
		fmt.Printf("Posts backed up successfully to %s\n", sink.Name())
	}
	return 0
}

// restore imports a snapshot into the configured store. Posts whose ids
// match existing ones replace them; nothing else is removed.
func restore(source string) int {
	cfg, ok := setup()
	if !ok {
		return 1
	}
	ctx := context.Background()

	r, err := openSnapshot(ctx, cfg, source)
	if err != nil {
		fmt.Printf("Backup file does not exist or cannot be read: %v\n", err)
		return 1
	}
	posts, err := backup.ReadSnapshot(r)
	r.Close()
	if err != nil {
		fmt.Printf("Failed to read backup: %v\n", err)
		return 1
	}
	if len(posts) == 0 {
		fmt.Printf("Backup contains no posts: %s\n", source)
		return 1
	}

	store, err := openStore(ctx, cfg, logger.New())
	if err != nil {
		fmt.Printf("Failed to open %s store: %v\n", cfg.Store, err)
		return 1
	}
	defer store.Close()

	current, err := store.Stats(ctx)
	if err != nil {
		fmt.Printf("Failed to read store: %v\n", err)
		return 1
	}
	if current.TotalPosts > 0 {
		question := fmt.Sprintf("The store already holds %d posts. Posts with matching ids will be replaced. Continue?", current.TotalPosts)
		if !confirm(question) {
			fmt.Println("Operation cancelled")
			return 1
		}
	}

	if err := store.Import(ctx, posts); err != nil {
		fmt.Printf("Failed to restore posts: %v\n", err)
		return 1
	}
	fmt.Printf("Restored %d posts successfully\n", len(posts))
	return 0
}

// migrate copies a legacy posts.json into the configured store.
func migrate(args []string) int {
	cfg, ok := setup()
	if !ok {
		return 1
	}
	source := cfg.DataFile
	if len(args) > 0 {
		source = args[0]
	}
	if cfg.Store == config.StoreFile && samePath(source, cfg.DataFile) {
		fmt.Printf("Error: %s is already the data file of the file store; set STORE to badger or mongodb\n", source)
		return 1
	}
	ctx := context.Background()

	r, err := openSnapshot(ctx, cfg, source)
	if err != nil {
		fmt.Printf("Failed to open %s: %v\n", source, err)
		return 1
	}
	posts, err := backup.ReadSnapshot(r)
	r.Close()
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", source, err)
		return 1
	}

	store, err := openStore(ctx, cfg, logger.New())
	if err != nil {
		fmt.Printf("Failed to open %s store: %v\n", cfg.Store, err)
		return 1
	}
	defer store.Close()

	if err := store.Import(ctx, posts); err != nil {
		fmt.Printf("Failed to migrate posts: %v\n", err)
		return 1
	}
	fmt.Printf("Migrated %d posts from %s into the %s store\n", len(posts), source, store.Kind())
	return 0
}

func stats() int {
	cfg, ok := setup()
	if !ok {
		return 1
	}
	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger.New())
	if err != nil {
		fmt.Printf("Failed to open %s store: %v\n", cfg.Store, err)
		return 1
	}
	defer store.Close()

	s, err := store.Stats(ctx)
	if err != nil {
		fmt.Printf("Failed to read stats: %v\n", err)
		return 1
	}
	fmt.Printf("Store:     %s\n", store.Kind())
	fmt.Printf("Posts:     %d\n", s.TotalPosts)
	fmt.Printf("Published: %d\n", s.PublishedPosts)
	return 0
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
