package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftJSONUsesClientFieldNames(t *testing.T) {
	raw := `{
		"id": 1717000000000,
		"reportNumber": "N-001",
		"district": "Ikeja",
		"capPractitioner": "A. Bello",
		"stateOfBuilding": {"abandoned": true, "completed": false, "underConstruction": true, "distressed": false},
		"observations": {"noticeLetter": true, "otherObservations": "fence"},
		"observationsRichText": "<b>1. crack</b>",
		"photos": [{"id": 1717000000000.123, "data": "data:image/png;base64,AA==", "gps": "Lat: 6.500000, Long: 3.300000", "timestamp": "6/1/2024, 10:00:00 AM", "title": ""}],
		"savedAt": "2024-06-01T10:00:00Z"
	}`

	var d Draft
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, int64(1717000000000), d.ID)
	assert.Equal(t, "N-001", d.ReportNumber)
	assert.True(t, d.StateOfBuilding.Abandoned)
	assert.True(t, d.StateOfBuilding.UnderConstruction)
	assert.True(t, d.Observations.NoticeLetter)
	assert.Equal(t, "fence", d.Observations.OtherObservations)
	require.Len(t, d.Photos, 1)
	assert.Equal(t, PhotoID("1717000000000.123"), d.Photos[0].ID)
	assert.True(t, d.Photos[0].HasLocation())
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), d.SavedAt.UTC())

	out, err := json.Marshal(d)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Contains(t, generic, "reportNumber")
	assert.Contains(t, generic, "savedAt")
	assert.NotContains(t, generic, "InspectionRecord")
	assert.Equal(t, "2024-06-01T10:00:00Z", generic["savedAt"])
}

func TestWithoutPhotosOmitsField(t *testing.T) {
	r := Report{InspectionRecord: InspectionRecord{ID: 7, Photos: []Photo{{ID: "a"}}}}
	r.InspectionRecord = r.WithoutPhotos()

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"photos"`)
}

func TestCloneDoesNotSharePhotos(t *testing.T) {
	rec := InspectionRecord{Photos: []Photo{{ID: "a", Title: "before"}}}
	cp := rec.Clone()
	cp.Photos[0].Title = "after"

	assert.Equal(t, "before", rec.Photos[0].Title)
}

func TestBuildingStateLabels(t *testing.T) {
	tests := []struct {
		name  string
		state BuildingState
		want  []string
	}{
		{"none", BuildingState{}, nil},
		{"single", BuildingState{Completed: true}, []string{"COMPLETED"}},
		{
			"all in form order",
			BuildingState{Abandoned: true, Completed: true, UnderConstruction: true, Distressed: true},
			[]string{"ABANDONED", "COMPLETED", "UNDER CONSTRUCTION/RENOVATION", "DISTRESSED/DEFECTIVE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Labels())
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-06-01T10:00:00Z", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"epoch millis", "1717236000000", time.UnixMilli(1717236000000)},
		{"locale en-US", "6/1/2024, 10:00:00 AM", time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)},
		{"date only", "2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)

	zero, err := ParseTimestamp("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestTimestampJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`1717236000000`), &ts))
	assert.Equal(t, int64(1717236000000), ts.UnixMilli())

	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestTimestampScan(t *testing.T) {
	var ts Timestamp
	now := time.Now().Truncate(time.Second)

	require.NoError(t, ts.Scan(now))
	assert.True(t, now.Equal(ts.Time))

	require.NoError(t, ts.Scan([]byte("2024-06-01T10:00:00Z")))
	assert.Equal(t, 2024, ts.Year())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}
