/*
main.go - Offline reference data builder

PURPOSE:
  Turns the published postcode dataset (CSV) into the flat JSON mapping
  the server loads, and optionally imports it, plus a course file, into
  the SQLite store.

STEPS:
  1. Read CSV (-in), keep rows with no EffectiveTo
  2. Write JSON mapping (-out)
  3. If -db is set: upsert the mapping into postcode_authorities
  4. If -courses is set: validate and upsert courses into the catalogue

COMMAND-LINE FLAGS:
  -in       Postcode CSV (required)
  -out      JSON output path (default: postcodes.json, "-" for stdout)
  -db       SQLite database to import into (optional)
  -courses  Course import file, .json/.yaml (optional, requires -db)
  -log-level, -log-format

EXAMPLES:
  ./preprocess -in data/postcode_funding.csv -out data/postcodes.json
  ./preprocess -in data/postcode_funding.csv -db funding.db -courses data/courses.yaml

SEE ALSO:
  - postcode/build.go: CSV parsing rules
  - factory/courses.go: Course import format
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/warp/funding-engine/courses"
	"github.com/warp/funding-engine/factory"
	"github.com/warp/funding-engine/funding"
	"github.com/warp/funding-engine/logging"
	"github.com/warp/funding-engine/postcode"
	"github.com/warp/funding-engine/store/sqlite"
)

type options struct {
	in, out, db, courses string
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "postcode CSV")
	flag.StringVar(&opts.out, "out", "postcodes.json", `JSON output path ("-" for stdout)`)
	flag.StringVar(&opts.db, "db", "", "SQLite database to import into")
	flag.StringVar(&opts.courses, "courses", "", "course import file")
	logLevel := flag.String("log-level", "info", "log level")
	logFormat := flag.String("log-format", "console", "log format (console or json)")
	flag.Parse()

	logger, err := logging.New(*logLevel, *logFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(context.Background(), opts, os.Stdout, logger); err != nil {
		logger.Fatal("preprocess failed", zap.Error(err))
	}
}

var errUsage = errors.New("usage")

func run(ctx context.Context, opts options, stdout io.Writer, logger *zap.Logger) error {
	if opts.in == "" {
		return fmt.Errorf("%w: -in is required", errUsage)
	}
	if opts.courses != "" && opts.db == "" {
		return fmt.Errorf("%w: -courses requires -db", errUsage)
	}

	mapping, err := buildMapping(opts.in, logger)
	if err != nil {
		return err
	}
	if err := writeMapping(opts.out, mapping, stdout); err != nil {
		return err
	}

	if opts.db == "" {
		return nil
	}
	store, err := sqlite.New(opts.db)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveAuthorities(ctx, mapping); err != nil {
		return err
	}
	logger.Info("postcodes imported", zap.String("db", opts.db), zap.Int("count", len(mapping)))

	if opts.courses != "" {
		v, err := funding.NewValidator(funding.DefaultThresholds())
		if err != nil {
			return err
		}
		imported, err := factory.LoadCoursesFile(opts.courses, v)
		if err != nil {
			return err
		}
		if err := courses.NewCatalogue(store).SaveAll(ctx, imported); err != nil {
			return err
		}
		logger.Info("courses imported", zap.String("file", opts.courses), zap.Int("count", len(imported)))
	}
	return nil
}

func buildMapping(path string, logger *zap.Logger) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	mapping, stats, err := postcode.BuildMap(f)
	if err != nil {
		return nil, err
	}
	logger.Info("postcode csv processed",
		zap.Int("rows", stats.Rows),
		zap.Int("current", stats.Current),
		zap.Int("expired", stats.Expired),
		zap.Int("skipped", stats.Skipped),
	)
	return mapping, nil
}

func writeMapping(path string, mapping map[string]string, stdout io.Writer) error {
	if path == "-" {
		return postcode.WriteJSON(stdout, mapping)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := postcode.WriteJSON(f, mapping); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
