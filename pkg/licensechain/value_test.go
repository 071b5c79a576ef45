package licensechain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensechain/licensechain-go/pkg/licensechain"
)

func TestValue_DecodeNested(t *testing.T) {
	var meta licensechain.Metadata
	raw := `{"seats":5,"big":12345678901234567890,"tags":["a",null,true],"owner":{"name":"Ada"},"ratio":0.5,"none":null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))

	seats, ok := meta["seats"].AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(5), seats)

	big, ok := meta["big"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, json.Number("12345678901234567890"), big)

	tags, ok := meta["tags"].AsArray()
	require.True(t, ok)
	require.Len(t, tags, 3)
	assert.Equal(t, licensechain.ValueString, tags[0].Type())
	assert.True(t, tags[1].IsNull())
	b, _ := tags[2].AsBool()
	assert.True(t, b)

	owner, ok := meta["owner"].AsObject()
	require.True(t, ok)
	name, _ := owner["name"].AsString()
	assert.Equal(t, "Ada", name)

	ratio, ok := meta["ratio"].AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	assert.True(t, meta["none"].IsNull())

	encoded, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(encoded))
	assert.Contains(t, string(encoded), "12345678901234567890")
}

func TestValue_AccessorsRejectOtherTypes(t *testing.T) {
	v := licensechain.String("5")
	_, ok := v.AsInt()
	assert.False(t, ok)
	_, ok = v.AsBool()
	assert.False(t, ok)
	_, ok = v.AsObject()
	assert.False(t, ok)

	_, ok = licensechain.Float(1.5).AsInt()
	assert.False(t, ok, "non-integer number")
}

func TestValueOf(t *testing.T) {
	v, err := licensechain.ValueOf(map[string]any{
		"plan":  "pro",
		"seats": 3,
		"trial": false,
		"tags":  []any{"x", 1.25},
	})
	require.NoError(t, err)

	want := licensechain.Object(map[string]licensechain.Value{
		"plan":  licensechain.String("pro"),
		"seats": licensechain.Int(3),
		"trial": licensechain.Bool(false),
		"tags":  licensechain.Array(licensechain.String("x"), licensechain.Float(1.25)),
	})
	assert.True(t, want.Equal(v))
	assert.Equal(t, map[string]any{
		"plan":  "pro",
		"seats": json.Number("3"),
		"trial": false,
		"tags":  []any{"x", json.Number("1.25")},
	}, v.Interface())

	_, err = licensechain.ValueOf(struct{}{})
	assert.Error(t, err)
}

func TestValue_ZeroAndEmpty(t *testing.T) {
	data, err := json.Marshal(licensechain.Value{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	data, err = json.Marshal(licensechain.Array())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = json.Marshal(licensechain.Object(nil))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	assert.True(t, licensechain.Float(0).Equal(licensechain.Int(0)))
}
