package documents_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"bennypowers.dev/cssdoodle/internal/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	doc := documents.NewDocument("file:///tmp/a.doodle", "cssdoodle", 1, "@grid: 5;")
	assert.Equal(t, "file:///tmp/a.doodle", doc.URI())
	assert.Equal(t, "cssdoodle", doc.LanguageID())
	assert.Equal(t, 1, doc.Version())
	assert.Equal(t, "@grid: 5;", doc.Content())
}

func TestDocument_SetContent(t *testing.T) {
	t.Run("accepts same or newer version", func(t *testing.T) {
		doc := documents.NewDocument("file:///a.doodle", "cssdoodle", 1, "a")
		require.NoError(t, doc.SetContent("b", 1))
		require.NoError(t, doc.SetContent("c", 2))
		assert.Equal(t, "c", doc.Content())
		assert.Equal(t, 2, doc.Version())
	})

	t.Run("rejects stale update", func(t *testing.T) {
		doc := documents.NewDocument("file:///a.doodle", "cssdoodle", 5, "original")
		err := doc.SetContent("stale", 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale")
		assert.Equal(t, "original", doc.Content())
	})
}

func TestDocument_Doodles(t *testing.T) {
	t.Run("html elements", func(t *testing.T) {
		doc := documents.NewDocument("file:///index.html", "html", 1,
			`<body><css-doodle grid="3">:doodle { @size: 8em; }</css-doodle></body>`)
		doodles := doc.Doodles()
		require.Len(t, doodles, 1)
		assert.Equal(t, "3", doodles[0].Grid())
		assert.Contains(t, doodles[0].Source, "@size: 8em;")
	})

	t.Run("refreshed after change", func(t *testing.T) {
		doc := documents.NewDocument("file:///index.html", "html", 1, "<p></p>")
		assert.Empty(t, doc.Doodles())
		require.NoError(t, doc.SetContent("<css-doodle>@grid: 2;</css-doodle>", 2))
		assert.Len(t, doc.Doodles(), 1)
	})

	t.Run("whole document", func(t *testing.T) {
		doc := documents.NewDocument("file:///a.doodle", "cssdoodle", 1, "background: @p(red, blue);")
		doodles := doc.Doodles()
		require.Len(t, doodles, 1)
		assert.Equal(t, "background: @p(red, blue);", doodles[0].Source)
	})
}

func TestURIConversion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths")
	}
	assert.Equal(t, "/home/user/my doodle.html", documents.URIToPath("file:///home/user/my%20doodle.html"))
	assert.Equal(t, "untitled:Untitled-1", documents.URIToPath("untitled:Untitled-1"))
	assert.Equal(t, "file:///home/user/my%20doodle.html", documents.PathToURI("/home/user/my doodle.html"))

	dir := t.TempDir()
	p := filepath.Join(dir, "a.doodle")
	assert.Equal(t, p, documents.URIToPath(documents.PathToURI(p)))

	doc := documents.NewDocument(documents.PathToURI(p), "cssdoodle", 1, "")
	assert.Equal(t, p, doc.Path())
}
