package repository

import (
	"testing"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentConversion(t *testing.T) {
	d := sampleDraft(1717000000000, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))

	data, err := toDocument(d)
	require.NoError(t, err)

	assert.Equal(t, int64(1717000000000), data["id"])
	assert.Equal(t, "N-001", data["reportNumber"])
	assert.Equal(t, "2024-06-01T10:00:00Z", data["savedAt"])
	assert.IsType(t, map[string]interface{}{}, data["stateOfBuilding"])

	back, err := fromDocument[models.Draft](data)
	require.NoError(t, err)
	assert.Equal(t, d.ID, back.ID)
	assert.True(t, d.SavedAt.Equal(back.SavedAt.Time))
	require.Len(t, back.Photos, 1)
	assert.Equal(t, models.PhotoID("p1"), back.Photos[0].ID)
}

func TestRecordFieldsMatchJSONNames(t *testing.T) {
	data, err := toDocument(sampleDraft(1, time.Now()))
	require.NoError(t, err)

	for _, field := range recordFields {
		assert.Contains(t, data, field)
	}
	assert.NotContains(t, recordFields, "photos")
	assert.Len(t, recordFields, len(data)-2)
}
