package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/samber/lo"
)

// Book is a single catalog record. Fields absent from a response decode to
// empty strings.
type Book struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Genre string `json:"genre"`
}

func (b Book) String() string {
	encoded, err := json.Marshal(b)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// Token is the opaque bearer credential issued by /auth/tokens.
type Token string

// SampleBooks returns the records the populator submits by default.
func SampleBooks() []Book {
	return []Book{
		{ID: "0000012345", Title: "2132: Evolution", Genre: "sci-fi"},
		{ID: "0000012346", Title: "The Killer in the Fog", Genre: "thriller"},
		{ID: "0000012347", Title: "Point of Fear", Genre: "horror"},
		{ID: "0000012348", Title: "Blade of Grace", Genre: "fantasy"},
		{ID: "0000012349", Title: "The Sun of Earth That Was", Genre: "sci-fi"},
		{ID: "0000012350", Title: "Spell and the Shadow", Genre: "fantasy"},
	}
}

// SampleIDs returns the IDs the reader looks up by default, in print order.
func SampleIDs() []string {
	return []string{
		"0000012345",
		"0000012346",
		"0000012347",
		"0000012348",
		"0000012349",
		"0000012350",
	}
}

// Find scans books in order and returns the first record with the given id.
func Find(books []Book, id string) (Book, bool) {
	return lo.Find(books, func(b Book) bool {
		return b.ID == id
	})
}

// DecodeBooks decodes a JSON array of records one at a time. Field values
// that are not strings are rendered as text, entries that are not objects are
// skipped. Only a body that is not an array is an error.
func DecodeBooks(body []byte) ([]Book, error) {
	var entries []json.RawMessage
	err := json.Unmarshal(body, &entries)
	if err != nil {
		return nil, err
	}

	books := make([]Book, 0, len(entries))
	for i, entry := range entries {
		var fields map[string]any
		decoder := json.NewDecoder(bytes.NewReader(entry))
		decoder.UseNumber()
		err := decoder.Decode(&fields)
		if err != nil || fields == nil {
			slog.Warn("skipping book record", "index", i, "record", string(entry))
			continue
		}
		books = append(books, Book{
			ID:    fieldText(fields["id"]),
			Title: fieldText(fields["title"]),
			Genre: fieldText(fields["genre"]),
		})
	}
	return books, nil
}

func fieldText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}
