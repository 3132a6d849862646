package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Dump writes every completed exchange of a client into a directory, one file
// per exchange named "<n>-<method>-<path>.txt".
type Dump struct {
	directory string
	counter   *uint64
}

func NewDump(dir string) (Dump, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return Dump{}, err
	}
	var counter uint64
	return Dump{directory: dir, counter: &counter}, nil
}

func (d Dump) filename(res *resty.Response) string {
	path := "root"
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		path = strings.Trim(res.RawResponse.Request.URL.Path, "/")
		path = strings.ReplaceAll(path, "/", "_")
	}
	n := atomic.AddUint64(d.counter, 1)
	return fmt.Sprintf("%03d-%s-%s.txt", n, res.Request.Method, path)
}

func (d Dump) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		name := filepath.Join(d.directory, d.filename(res))
		err := os.WriteFile(name, []byte(FormatMessage(res)), 0600)
		if err != nil {
			slog.Warn("failed to write http dump", "file", name, "err", err)
		}
		return nil
	})
}
