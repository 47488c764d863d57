package dbtypes

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMapRoundTrip(t *testing.T) {
	m := JSONMap{}
	require.NoError(t, m.SetJSON("query", "roti"))
	require.NoError(t, m.SetJSON("count", 3))

	value, err := m.Value()
	require.NoError(t, err)

	var decoded JSONMap
	require.NoError(t, decoded.Scan(value))

	var query string
	found, err := decoded.GetJSON("query", &query)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "roti", query)

	var count int
	found, err = decoded.GetJSON("count", &count)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, count)
}

func TestJSONMapMissingKey(t *testing.T) {
	m := JSONMap{}
	var out string
	found, err := m.GetJSON("absent", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJSONMapScanEdgeCases(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	require.NoError(t, m.Scan([]byte(`{"a":1}`)))
	assert.Contains(t, m, "a")

	require.Error(t, m.Scan(42))
	require.Error(t, m.Scan("not json"))
}

func TestJSONMapEmptyValue(t *testing.T) {
	value, err := JSONMap{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", value)
}

func TestJSONMapGetJSONTypeMismatch(t *testing.T) {
	m := JSONMap{"n": json.RawMessage(`"text"`)}
	var out int
	found, err := m.GetJSON("n", &out)
	assert.True(t, found)
	require.Error(t, err)
}

func TestUUIDListRoundTrip(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	list := UUIDList{first, second}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded UUIDList
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 2)
	assert.Equal(t, first, decoded[0])
	assert.Equal(t, second, decoded[1])
}

func TestUUIDListEmptyValue(t *testing.T) {
	value, err := UUIDList{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	var decoded UUIDList
	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)
}

func TestUUIDListContains(t *testing.T) {
	id := uuid.New()
	list := UUIDList{id}
	assert.True(t, list.Contains(id))
	assert.False(t, list.Contains(uuid.New()))
	assert.False(t, UUIDList{}.Contains(id))
}
