package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postwatch/internal/models"
)

func TestRecordUnmarshalExtractsKnownFields(t *testing.T) {
	in := []byte(`{"userId":3,"id":21,"title":"asperiores ea ipsam","body":"dolorem dolore est"}`)

	var r models.Record
	require.NoError(t, json.Unmarshal(in, &r))

	assert.Equal(t, 21, r.ID)
	assert.Equal(t, 3, r.OwnerID)
	assert.Equal(t, "asperiores ea ipsam", r.Title)

	var body string
	require.NoError(t, json.Unmarshal(r.Extra["body"], &body))
	assert.Equal(t, "dolorem dolore est", body)
	assert.NotContains(t, r.Extra, "id")
	assert.NotContains(t, r.Extra, "title")
}

func TestRecordRoundTripKeepsUnknownAttributes(t *testing.T) {
	in := []byte(`{"userId":1,"id":2,"title":"t","body":"b","tags":["x","y"],"nested":{"a":1}}`)

	var r models.Record
	require.NoError(t, json.Unmarshal(in, &r))
	out, err := json.Marshal(r)
	require.NoError(t, err)

	var got, want map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.NoError(t, json.Unmarshal(in, &want))
	assert.Equal(t, want, got)
}

func TestRecordMissingFieldsZeroValued(t *testing.T) {
	var r models.Record
	require.NoError(t, json.Unmarshal([]byte(`{"body":"only extras"}`), &r))

	assert.Zero(t, r.ID)
	assert.Zero(t, r.OwnerID)
	assert.Empty(t, r.Title)
	assert.Contains(t, r.Extra, "body")
}

func TestRecordUnmarshalTypeMismatch(t *testing.T) {
	var r models.Record
	assert.Error(t, json.Unmarshal([]byte(`{"id":"twenty"}`), &r))
}
