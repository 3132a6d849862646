package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFirstMatchWins(t *testing.T) {
	books := []Book{
		{ID: "1", Title: "first"},
		{ID: "2", Title: "other"},
		{ID: "1", Title: "duplicate"},
	}

	book, ok := Find(books, "1")
	require.True(t, ok)
	require.Equal(t, "first", book.Title)

	_, ok = Find(books, "3")
	require.False(t, ok)

	_, ok = Find(nil, "1")
	require.False(t, ok)
}

func TestDecodeBooks(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected []Book
	}{
		{
			name:     "empty",
			body:     `[]`,
			expected: []Book{},
		},
		{
			name: "non string values",
			body: `[{"id": 99, "title": null, "genre": ["a", "b"]}, {"id": 12345678901234567890, "title": true, "genre": {"x": 1}}]`,
			expected: []Book{
				{ID: "99", Genre: `["a","b"]`},
				{ID: "12345678901234567890", Title: "true", Genre: `{"x":1}`},
			},
		},
		{
			name: "entries that are not objects",
			body: `["junk", null, 7, {"id": "0000012345"}]`,
			expected: []Book{
				{ID: "0000012345"},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			books, err := DecodeBooks([]byte(test.body))
			require.NoError(t, err)
			require.Equal(t, test.expected, books)
		})
	}
}

func TestDecodeBooksNotAnArray(t *testing.T) {
	_, err := DecodeBooks([]byte(`{"id": "0000012345"}`))
	require.Error(t, err)
}

func TestBookString(t *testing.T) {
	book := Book{ID: "0000012345", Title: "2132: Evolution", Genre: "sci-fi"}
	require.Equal(t, `{"id":"0000012345","title":"2132: Evolution","genre":"sci-fi"}`, book.String())
}

func TestSampleData(t *testing.T) {
	books := SampleBooks()
	ids := SampleIDs()
	require.Len(t, books, 6)
	require.Len(t, ids, 6)
	for i, b := range books {
		require.Equal(t, ids[i], b.ID)
		require.Len(t, b.ID, 10)
	}
}
