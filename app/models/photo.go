package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GPSUnavailable marks a photo whose capture location could not be obtained.
const GPSUnavailable = "GPS location unavailable"

// PhotoID identifies a photo within one record. Older clients sent numeric
// ids (capture time plus a random fraction); those are kept in their textual form.
type PhotoID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *PhotoID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PhotoID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid photo id %s: %w", data, err)
	}
	*id = PhotoID(n.String())
	return nil
}

// Photo is one evidence image with its capture metadata.
type Photo struct {
	ID        PhotoID `json:"id"`
	Data      string  `json:"data"`
	GPS       string  `json:"gps"`
	Timestamp string  `json:"timestamp"`
	Title     string  `json:"title"`
}

// HasLocation reports whether the photo carries real coordinates.
func (p Photo) HasLocation() bool {
	return p.GPS != "" && p.GPS != GPSUnavailable
}
