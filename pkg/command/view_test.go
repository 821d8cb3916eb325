package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringViewWords(t *testing.T) {
	v := NewStringView(`one two  three`)

	w, err := v.Word()
	require.NoError(t, err)
	assert.Equal(t, "one", w)

	w, err = v.Word()
	require.NoError(t, err)
	assert.Equal(t, "two", w)

	assert.False(t, v.Empty())

	w, err = v.Word()
	require.NoError(t, err)
	assert.Equal(t, "three", w)

	assert.True(t, v.Empty())
}

func TestStringViewQuoted(t *testing.T) {
	v := NewStringView(`"hello there" rest`)

	w, err := v.Word()
	require.NoError(t, err)
	assert.Equal(t, "hello there", w)

	w, err = v.Word()
	require.NoError(t, err)
	assert.Equal(t, "rest", w)
}

func TestStringViewEscapedQuote(t *testing.T) {
	v := NewStringView(`"say \"hi\" twice"`)

	w, err := v.Word()
	require.NoError(t, err)
	assert.Equal(t, `say "hi" twice`, w)
}

func TestStringViewUnclosedQuote(t *testing.T) {
	v := NewStringView(`"never closed`)

	_, err := v.Word()
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestStringViewRest(t *testing.T) {
	v := NewStringView("first the rest of it  ")

	w, err := v.Word()
	require.NoError(t, err)
	assert.Equal(t, "first", w)
	assert.Equal(t, "the rest of it", v.Rest())
	assert.True(t, v.Empty())
	assert.Equal(t, "", v.Rest())
}
