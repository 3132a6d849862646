package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"bookcatalog/lib/restyutil"
	"bookcatalog/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/catalog")

var ErrUnexpectedStatus = errors.New("unexpected response status")

const (
	tokensPath = "/auth/tokens"
	booksPath  = "/api/books"
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	timeout time.Duration
	dump    *restyutil.Dump
}

type ClientOptions struct {
	BaseUrl string
	// 0 leaves requests without a timeout.
	Timeout time.Duration
	// DumpDir, when set, receives a text dump of every exchange.
	DumpDir string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseUrl)
	}

	c := &Client{
		BaseUrl: baseUrl,
		timeout: opts.Timeout,
	}
	if opts.DumpDir != "" {
		dump, err := restyutil.NewDump(opts.DumpDir)
		if err != nil {
			return nil, err
		}
		c.dump = &dump
	}
	c.Http = c.newResty()
	return c, nil
}

func (c *Client) newResty() *resty.Client {
	client := resty.New()
	client.SetBaseURL(c.BaseUrl.String())
	if c.timeout > 0 {
		client.SetTimeout(c.timeout)
	}
	telemetry.InstrumentResty(client, "lib/catalog/http")
	if c.dump != nil {
		c.dump.Attach(client)
	}
	return client
}

func statusError(res *resty.Response) error {
	return fmt.Errorf(
		"%w: %s %s -> %d: %s",
		ErrUnexpectedStatus,
		res.Request.Method,
		res.Request.URL,
		res.StatusCode(),
		res.String(),
	)
}

// IssueToken exchanges digest credentials for a bearer token. The response
// body is returned verbatim.
func (c *Client) IssueToken(ctx context.Context, username, password string) (Token, error) {
	ctx, span := tracer.Start(ctx, "client:IssueToken")
	defer span.End()

	// digest auth swaps the transport of the whole resty client, so the
	// exchange gets a client of its own.
	auth := c.newResty()
	auth.SetDigestAuth(username, password)

	res, err := auth.R().
		SetContext(ctx).
		Post(tokensPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to request token")
		return "", err
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "token request rejected")
		return "", statusError(res)
	}

	return Token(res.Body()), nil
}

func (c *Client) CreateBook(ctx context.Context, token Token, book Book) error {
	ctx, span := tracer.Start(ctx, "client:CreateBook")
	defer span.End()
	span.SetAttributes(attribute.String("book.id", book.ID))

	res, err := c.Http.R().
		SetContext(ctx).
		SetAuthToken(string(token)).
		SetHeader("Content-Type", "application/json").
		SetBody(book).
		Post(booksPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to create book")
		return err
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "create book rejected")
		return statusError(res)
	}
	return nil
}

func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	ctx, span := tracer.Start(ctx, "client:ListBooks")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(booksPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to list books")
		return nil, err
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "list books rejected")
		return nil, statusError(res)
	}

	books, err := DecodeBooks(res.Body())
	if err != nil {
		span.SetStatus(codes.Error, "failed to decode books")
		return nil, fmt.Errorf("decode books: %w", err)
	}
	span.SetAttributes(attribute.Int("books.count", len(books)))
	return books, nil
}
