package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshal(t *testing.T) {
	type payload struct {
		Name string             `json:"name"`
		Tags Optional[[]string] `json:"tags"`
	}

	t.Run("omitted field stays unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &p))
		assert.False(t, p.Tags.Set)
	})

	t.Run("explicit null is set with zero value", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"tags":null}`), &p))
		assert.True(t, p.Tags.Set)
		assert.Nil(t, p.Tags.Value)
	})

	t.Run("explicit empty list is set and empty", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"tags":[]}`), &p))
		assert.True(t, p.Tags.Set)
		require.NotNil(t, p.Tags.Value)
		assert.Empty(t, p.Tags.Value)
	})

	t.Run("value round trips", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"tags":["a","b"]}`), &p))
		assert.True(t, p.Tags.Set)
		assert.Equal(t, []string{"a", "b"}, p.Tags.Value)
	})
}

func TestErrorHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ValidationError(CodeNameRequired, "x").HTTPStatus())
	assert.Equal(t, 409, ConflictError(CodeSlugDuplicate, "x").HTTPStatus())
	assert.Equal(t, 404, NotFoundError("x").HTTPStatus())
	assert.Equal(t, 500, InternalError(assert.AnError).HTTPStatus())
}

func TestAsError(t *testing.T) {
	t.Run("typed errors pass through", func(t *testing.T) {
		err := ValidationError(CodePriceInvalid, "bad")
		assert.Same(t, err, AsError(err))
	})

	t.Run("untyped errors become internal", func(t *testing.T) {
		de := AsError(assert.AnError)
		assert.Equal(t, KindInternal, de.Kind)
		assert.ErrorIs(t, de, assert.AnError)
	})
}

func TestAttributeLookupResolve(t *testing.T) {
	l := NewAttributeLookup()
	l.AddAttribute("Size", 10)
	l.AddValue("Size", "M", 21)

	attrID, valueID, ok := l.Resolve("Size", "M")
	assert.True(t, ok)
	assert.Equal(t, int64(10), attrID)
	assert.Equal(t, int64(21), valueID)

	_, _, ok = l.Resolve("Size", "XL")
	assert.False(t, ok)

	_, _, ok = l.Resolve("Color", "Red")
	assert.False(t, ok)

	assert.True(t, l.HasAttribute("Size"))
	assert.False(t, l.HasAttribute("Color"))
}
