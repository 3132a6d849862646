// Package report prints a summary block for each requested book ID.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"bookcatalog/lib/catalog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/report")

const DefaultBaseUrl = "http://localhost:5000"

// MissingPolicy decides how an ID with no matching record is rendered.
type MissingPolicy string

const (
	// MissingEmpty renders a miss as a record with every field empty.
	MissingEmpty MissingPolicy = "empty"
	// MissingMarker renders the requested ID with NOT FOUND in place of the
	// other fields.
	MissingMarker MissingPolicy = "marker"
)

func ParseMissingPolicy(value string) (MissingPolicy, error) {
	switch policy := MissingPolicy(value); policy {
	case MissingEmpty, MissingMarker:
		return policy, nil
	case "":
		return MissingEmpty, nil
	}
	return "", fmt.Errorf("unknown missing policy %q, expected %q or %q", value, MissingEmpty, MissingMarker)
}

const notFound = "NOT FOUND"

type Config struct {
	BaseUrl string        `json:"base_url"`
	IDs     []string      `json:"ids"`
	Missing MissingPolicy `json:"missing"`

	// Delay is the pause after formatting each block.
	Delay   time.Duration `json:"-"`
	// 0 leaves requests without a timeout.
	Timeout time.Duration `json:"-"`
	DumpDir string        `json:"dump_dir"`
}

func DefaultConfig() Config {
	return Config{
		BaseUrl: DefaultBaseUrl,
		IDs:     catalog.SampleIDs(),
		Delay:   time.Second,
		Missing: MissingEmpty,
	}
}

// Result is the outcome of looking up a single ID.
type Result struct {
	ID    string
	Book  catalog.Book
	Found bool
}

// Lookup resolves each id against books in order. The first record carrying
// an id wins.
func Lookup(books []catalog.Book, ids []string) []Result {
	results := make([]Result, len(ids))
	for i, id := range ids {
		book, found := catalog.Find(books, id)
		results[i] = Result{ID: id, Book: book, Found: found}
	}
	return results
}

func FormatBook(book catalog.Book) string {
	var out strings.Builder
	fmt.Fprintf(&out, "ID: %s\n", book.ID)
	fmt.Fprintf(&out, "TITLE: %s\n", book.Title)
	fmt.Fprintf(&out, "GENRE: %s\n", book.Genre)
	return out.String()
}

func (r Result) format(policy MissingPolicy) string {
	if r.Found || policy != MissingMarker {
		return FormatBook(r.Book)
	}
	return FormatBook(catalog.Book{ID: r.ID, Title: notFound, Genre: notFound})
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run fetches the catalog once and writes a block per configured ID, each
// followed by a blank line.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	client, err := catalog.NewClient(ctx, catalog.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Timeout: cfg.Timeout,
		DumpDir: cfg.DumpDir,
	})
	if err != nil {
		span.SetStatus(codes.Error, "invalid client options")
		return err
	}
	books, err := client.ListBooks(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list books")
		return fmt.Errorf("list books: %w", err)
	}

	results := Lookup(books, cfg.IDs)
	missing := 0
	for _, result := range results {
		if !result.Found {
			missing++
		}
		block := result.format(cfg.Missing)
		err = wait(ctx, cfg.Delay)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, block)
	}
	span.SetAttributes(
		attribute.Int("ids.count", len(results)),
		attribute.Int("ids.missing", missing),
	)
	return nil
}
