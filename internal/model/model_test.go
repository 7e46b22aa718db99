package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalRunStatus(t *testing.T) {
	assert.Equal(t, RunStatusSuccess, FinalRunStatus(0))
	assert.Equal(t, RunStatusCompletedWithErrors, FinalRunStatus(1))
	assert.Equal(t, RunStatusCompletedWithErrors, FinalRunStatus(42))
}

func TestRawRecord_JSONRoundTrip(t *testing.T) {
	in := `{"url":"https://example.com/properties/1","price":"£2,000","bedrooms":"2","floor_area_sqm":50}`

	var rec RawRecord
	require.NoError(t, json.Unmarshal([]byte(in), &rec))

	assert.Equal(t, "https://example.com/properties/1", rec.URL)
	assert.Equal(t, "£2,000", rec.Price)
	assert.Equal(t, "2", rec.Bedrooms)
	require.NotNil(t, rec.FloorAreaSqm)
	assert.Equal(t, 50.0, *rec.FloorAreaSqm)
	assert.Nil(t, rec.YearBuilt)
}

func TestRawRecord_OmitsEmptyFields(t *testing.T) {
	out, err := json.Marshal(RawRecord{URL: "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"u1"}`, string(out))
}
