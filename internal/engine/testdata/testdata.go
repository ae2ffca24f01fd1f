package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/crimson-sun/djenbridge/internal/model"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled raw notification for classification validation.
type CorpusEntry struct {
	Raw                model.RawNotification `json:"raw"`
	ExpectedType       string                `json:"expected_type"`
	ExpectedCaseNumber string                `json:"expected_case_number"`
	Description        string                `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

// RawRecords returns just the raw notifications, in corpus order.
func RawRecords(entries []CorpusEntry) []model.RawNotification {
	out := make([]model.RawNotification, len(entries))
	for i, e := range entries {
		out[i] = e.Raw
	}
	return out
}
