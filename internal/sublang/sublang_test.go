package sublang_test

import (
	"errors"
	"strings"
	"testing"

	"bennypowers.dev/cssdoodle/internal/sublang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upper struct{ fail bool }

func (upper) Name() string { return "upper" }

func (u upper) Compile(source string) (any, error) {
	if u.fail {
		return nil, errors.New("boom")
	}
	return strings.Fields(source), nil
}

func (upper) Render(tree any) (string, error) {
	words, ok := tree.([]string)
	if !ok {
		return "", &sublang.TypeError{Language: "upper", Tree: tree}
	}
	return strings.ToUpper(strings.Join(words, " ")), nil
}

func TestRun(t *testing.T) {
	out, err := sublang.Run(upper{}, "a  b")
	require.NoError(t, err)
	assert.Equal(t, "A B", out)

	_, err = sublang.Run(upper{fail: true}, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile upper: boom")
}

func TestTypeError(t *testing.T) {
	_, err := upper{}.Render(42)
	var te *sublang.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "upper: unexpected tree int", err.Error())
}
