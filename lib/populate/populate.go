// Package populate seeds a catalog with book records through the
// authenticated create endpoint.
package populate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"bookcatalog/lib/catalog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("lib/populate")

const (
	DefaultBaseUrl  = "http://localhost:5000"
	DefaultUsername = "learner"
	DefaultPassword = "p@ssword"
)

type Config struct {
	BaseUrl  string         `json:"base_url"`
	Username string         `json:"username"`
	Password string         `json:"password"`
	Books    []catalog.Book `json:"books"`

	// 0 submits books back to back.
	RequestsPerSecond float64       `json:"requests_per_second"`
	// 0 leaves requests without a timeout.
	Timeout           time.Duration `json:"-"`
	DumpDir           string        `json:"dump_dir"`
}

func DefaultConfig() Config {
	return Config{
		BaseUrl:  DefaultBaseUrl,
		Username: DefaultUsername,
		Password: DefaultPassword,
		Books:    catalog.SampleBooks(),
	}
}

func (c Config) limiter() *rate.Limiter {
	if c.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), 1)
}

// Run authenticates once and submits every configured book in order, writing
// one confirmation line per accepted book to out. The first failure stops the
// run.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("books.count", len(cfg.Books)))

	client, err := catalog.NewClient(ctx, catalog.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Timeout: cfg.Timeout,
		DumpDir: cfg.DumpDir,
	})
	if err != nil {
		span.SetStatus(codes.Error, "invalid client options")
		return err
	}
	return submit(ctx, client, cfg, out)
}

func submit(ctx context.Context, client *catalog.Client, cfg Config, out io.Writer) error {
	token, err := client.IssueToken(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	slog.DebugContext(ctx, "token issued", "username", cfg.Username)

	limiter := cfg.limiter()
	for _, book := range cfg.Books {
		err = limiter.Wait(ctx)
		if err != nil {
			return err
		}
		err = client.CreateBook(ctx, token, book)
		if err != nil {
			return fmt.Errorf("create book %s: %w", book.ID, err)
		}
		fmt.Fprintf(out, "added new book: %s\n", book)
	}
	return nil
}
