package testdata

import (
	"testing"

	"github.com/crimson-sun/djenbridge/internal/model"
)

func TestLoadCorpus(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	if len(entries) == 0 {
		t.Fatal("corpus is empty")
	}
	t.Logf("Total entries: %d", len(entries))

	// Every entry must have all required fields.
	for i, e := range entries {
		if len(e.Raw) == 0 {
			t.Errorf("entry[%d] has empty raw", i)
		}
		if e.ExpectedType == "" {
			t.Errorf("entry[%d] has empty expected_type", i)
		}
		if e.ExpectedCaseNumber == "" {
			t.Errorf("entry[%d] has empty expected_case_number", i)
		}
	}
}

func TestCorpusCoverage(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.ExpectedType]++
	}
	for _, typ := range model.NotificationTypes() {
		if counts[string(typ)] < 2 {
			t.Errorf("type %q has %d entries (want >= 2)", typ, counts[string(typ)])
		}
	}
	for typ := range counts {
		if model.ParseNotificationType(typ) != model.NotificationType(typ) {
			t.Errorf("corpus uses unknown type %q", typ)
		}
	}
}

func TestCorpusCaseNumbersUnique(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}

	seen := map[string]int{}
	for i, e := range entries {
		if j, dup := seen[e.ExpectedCaseNumber]; dup {
			t.Errorf("entry[%d] (%s) repeats case number of entry[%d]", i, e.Description, j)
		}
		seen[e.ExpectedCaseNumber] = i
	}
}
