// Command imageaudit checks that every public entry's photo file exists on
// disk and writes the broken references to missing.json.
//
// Usage:
//
//	imageaudit [-db path] [-out missing.json]
//
// Exits non-zero when any referenced photo is missing, so CI can gate on it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mgoto/recipelog/internal/adapter/sqlite"
	dishrepo "github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
	"github.com/mgoto/recipelog/internal/imagecheck"
	"github.com/mgoto/recipelog/internal/migrate"
	"github.com/mgoto/recipelog/internal/migrate/migrations"
	"github.com/mgoto/recipelog/internal/storage"
)

func main() {
	dbPath := flag.String("db", "data/recipelog.db", "path to the database file")
	outPath := flag.String("out", "missing.json", "path to the report file")
	mediaRoot := flag.String("media", "data/media", "media root directory")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("imageaudit: open database: %v", err)
	}
	defer db.Close()

	runner := migrate.New(db, migrations.FS, logger)
	records, err := runner.Applied(ctx)
	if err != nil {
		log.Fatalf("imageaudit: read migration ledger: %v", err)
	}
	schema := migrate.SchemaFromRecords(records)

	dishes := dishrepo.New(db, schema, storage.NewResolver(*mediaRoot))
	auditor := imagecheck.New(dishes, logger)

	missing, err := auditor.Run(ctx)
	if err != nil {
		log.Fatalf("imageaudit: %v", err)
	}
	if err := imagecheck.WriteReport(*outPath, missing); err != nil {
		log.Fatalf("imageaudit: %v", err)
	}

	if len(missing) > 0 {
		fmt.Printf("%d missing photo file(s), see %s\n", len(missing), *outPath)
		os.Exit(1)
	}
	fmt.Println("all public photos present")
}
