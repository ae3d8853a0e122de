package html_test

import (
	"testing"

	"bennypowers.dev/cssdoodle/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoodles(t *testing.T) {
	source := `<!DOCTYPE html>
<html>
<body>
  <css-doodle grid="5" seed="abc" experimental>
    background: @p(red, blue);
  </css-doodle>
  <p>between</p>
  <css-doodle grid=3x2>@grid: 2;</css-doodle>
</body>
</html>`

	elements := html.Doodles(source)
	require.Len(t, elements, 2)

	first := elements[0]
	assert.Contains(t, first.Content, "background: @p(red, blue);")
	assert.Equal(t, "5", first.Grid())
	assert.Equal(t, "abc", first.Seed())
	assert.True(t, first.Experimental())
	assert.Equal(t, uint(3), first.StartLine)

	second := elements[1]
	assert.Equal(t, "@grid: 2;", second.Content)
	assert.Equal(t, "3x2", second.Grid())
	assert.False(t, second.Experimental())
	_, ok := second.Attr("seed")
	assert.False(t, ok)
}

func TestDoodles_Experimental(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{`<css-doodle experimental="false"></css-doodle>`, false},
		{`<css-doodle experimental="true"></css-doodle>`, true},
		{`<css-doodle experimental=""></css-doodle>`, true},
		{`<css-doodle></css-doodle>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			elements := html.Doodles(tt.tag)
			require.Len(t, elements, 1)
			assert.Equal(t, tt.want, elements[0].Experimental())
		})
	}
}

func TestDoodles_None(t *testing.T) {
	assert.Empty(t, html.Doodles(`<div><style>a{b:c}</style></div>`))
	assert.Empty(t, html.Doodles(``))
}

func TestParser_Pool(t *testing.T) {
	p := html.AcquireParser()
	defer html.ReleaseParser(p)
	for range 3 {
		assert.Len(t, p.ParseDoodles(`<css-doodle>color: red;</css-doodle>`), 1)
	}
}
