package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int `json:"id"`
}

func TestNormaliseList_BareArray(t *testing.T) {
	got, err := NormaliseList[item](json.RawMessage(`[{"id":7}]`))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 7}}, got)
}

func TestNormaliseList_Envelope(t *testing.T) {
	got, err := NormaliseList[item](json.RawMessage(`{"results":[{"id":7}]}`))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 7}}, got)
}

func TestNormaliseList_BothShapesAgree(t *testing.T) {
	bare, err := NormaliseList[item](json.RawMessage(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	wrapped, err := NormaliseList[item](json.RawMessage(` {"next":null,"results":[{"id":1},{"id":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, bare, wrapped)
}

func TestNormaliseList_UnrecognisedShapesAreEmpty(t *testing.T) {
	for _, payload := range []string{
		`{}`,
		`{"results":null}`,
		`{"results":{"id":1}}`,
		`{"results":"nope"}`,
		`null`,
		`"text"`,
		`42`,
		``,
	} {
		got, err := NormaliseList[item](json.RawMessage(payload))
		require.NoError(t, err, "payload %q", payload)
		assert.NotNil(t, got, "payload %q", payload)
		assert.Empty(t, got, "payload %q", payload)
	}
}

func TestNormaliseList_EmptyArray(t *testing.T) {
	got, err := NormaliseList[item](json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormaliseList_ElementTypeMismatch(t *testing.T) {
	_, err := NormaliseList[item](json.RawMessage(`[{"id":"seven"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
