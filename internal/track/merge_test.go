package track

import (
	"testing"
)

func TestIsPresent(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"W. Werzowa (ASCAP)(100%)", true},
		{"x", true},
		{"", false},
		{"   ", false},
		{"-", false},
		{"n/a", false},
		{"N/A", false},
		{"null", false},
		{"NULL", false},
		{"undefined", false},
		{" - ", false},
	}

	for _, tt := range tests {
		if got := IsPresent(tt.input); got != tt.expected {
			t.Errorf("IsPresent(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestMergeFillsOnlyAbsentFields(t *testing.T) {
	existing := &Record{
		TrackName:  "Punch Drunk",
		Composer:   "W. Werzowa (ASCAP)(100%)",
		Confidence: 0.9,
		Verified:   true,
	}
	incoming := &Record{
		TrackName:  "Punch Drunk",
		Composer:   "Somebody Else",
		Publisher:  "Intervox Music",
		Duration:   92,
		Confidence: 0.6,
		DataSource: SourceScrape,
	}

	res := Merge(existing, incoming)

	if res.Record.Composer != "W. Werzowa (ASCAP)(100%)" {
		t.Errorf("present composer was overwritten: %q", res.Record.Composer)
	}
	if res.Record.Publisher != "Intervox Music" {
		t.Errorf("absent publisher was not filled: %q", res.Record.Publisher)
	}
	if res.Record.Duration != 92 {
		t.Errorf("absent duration was not filled: %d", res.Record.Duration)
	}
	if !res.Changed {
		t.Error("expected Changed to be true")
	}

	// Original must not be mutated
	if existing.Publisher != "" {
		t.Error("existing record was mutated")
	}
}

func TestMergeSentinelsCountAsAbsent(t *testing.T) {
	existing := &Record{TrackName: "Punch Drunk", Publisher: "n/a"}
	incoming := &Record{TrackName: "Punch Drunk", Publisher: "Intervox Music", DataSource: SourceScrape}

	res := Merge(existing, incoming)
	if res.Record.Publisher != "Intervox Music" {
		t.Errorf("sentinel publisher should be fillable, got %q", res.Record.Publisher)
	}

	// Sentinel incoming values never fill
	existing2 := &Record{TrackName: "Punch Drunk"}
	incoming2 := &Record{TrackName: "Punch Drunk", Publisher: "-", DataSource: SourceScrape}
	res2 := Merge(existing2, incoming2)
	if res2.Record.Publisher != "" {
		t.Errorf("sentinel incoming value was copied: %q", res2.Record.Publisher)
	}
}

func TestMergeBookkeeping(t *testing.T) {
	existing := &Record{TrackName: "Punch Drunk", Confidence: 0.9, Verified: true}
	incoming := &Record{TrackName: "Punch Drunk", Confidence: 0.5, DataSource: SourceScrape}

	res := Merge(existing, incoming)
	if res.Record.Confidence != 0.9 {
		t.Errorf("confidence lowered to %f", res.Record.Confidence)
	}
	if !res.Record.Verified {
		t.Error("verified flag was cleared")
	}

	// Higher incoming confidence ratchets up, verified propagates
	existing2 := &Record{TrackName: "Punch Drunk", Confidence: 0.5}
	incoming2 := &Record{TrackName: "Punch Drunk", Confidence: 0.8, Verified: true, DataSource: SourceScrape}
	res2 := Merge(existing2, incoming2)
	if res2.Record.Confidence != 0.8 {
		t.Errorf("confidence not raised: %f", res2.Record.Confidence)
	}
	if !res2.Record.Verified {
		t.Error("verified flag did not propagate")
	}
}

func TestMergeUserApprovedOverridesEverything(t *testing.T) {
	existing := &Record{
		ID:         7,
		TrackName:  "Punch Drunk",
		Composer:   "X",
		Publisher:  "Old Publisher",
		Confidence: 0.9,
		Verified:   true,
	}
	incoming := &Record{
		TrackName:  "Punch Drunk",
		Composer:   "", // explicit human clearing
		Publisher:  "New Publisher",
		Confidence: 1.0,
		DataSource: SourceUserApproved,
		Verified:   true,
	}

	res := Merge(existing, incoming)

	if !res.Overwritten {
		t.Error("expected override rule to fire")
	}
	if res.Record.Composer != "" {
		t.Errorf("explicit clearing was not honored: %q", res.Record.Composer)
	}
	if res.Record.Publisher != "New Publisher" {
		t.Errorf("override did not replace publisher: %q", res.Record.Publisher)
	}
	if res.Record.ID != 7 {
		t.Errorf("override lost the record identity: %d", res.Record.ID)
	}
}

func TestMergeUserEditTagsTriggerOverride(t *testing.T) {
	for _, src := range []string{SourceUserApproved, SourceUserEdit, SourceUserComplete} {
		existing := &Record{TrackName: "Punch Drunk", Composer: "X"}
		incoming := &Record{TrackName: "Punch Drunk", Composer: "Y", DataSource: src}
		res := Merge(existing, incoming)
		if res.Record.Composer != "Y" {
			t.Errorf("dataSource %q did not trigger override", src)
		}
	}
	// Non-approval sources never override
	existing := &Record{TrackName: "Punch Drunk", Composer: "X"}
	incoming := &Record{TrackName: "Punch Drunk", Composer: "Y", DataSource: SourceAIExtract}
	if res := Merge(existing, incoming); res.Record.Composer != "X" {
		t.Errorf("non-approval source overwrote composer: %q", res.Record.Composer)
	}
}

func TestMergeDefaultIgnoresApprovalTag(t *testing.T) {
	// The deduplicator folds stored records with MergeDefault; a record that
	// was once saved as user_approved must not clobber its group target.
	existing := &Record{TrackName: "Punch Drunk", Composer: "X"}
	incoming := &Record{TrackName: "Punch Drunk", Composer: "Y", DataSource: SourceUserApproved}

	res := MergeDefault(existing, incoming)
	if res.Record.Composer != "X" {
		t.Errorf("MergeDefault applied the override rule: %q", res.Record.Composer)
	}
}

func TestMergeNoChangeNoFlag(t *testing.T) {
	existing := &Record{TrackName: "Punch Drunk", Composer: "X", Confidence: 0.9}
	incoming := &Record{TrackName: "Punch Drunk", Composer: "X", Confidence: 0.5, DataSource: SourceScrape}

	res := Merge(existing, incoming)
	if res.Changed {
		t.Errorf("no-op merge reported change: %v", res.FieldsChanged)
	}
}

func TestPatternConfidence(t *testing.T) {
	prev := 0.0
	for n := 1; n <= 10; n++ {
		c := PatternConfidence(n)
		if c < prev {
			t.Errorf("confidence decreased at n=%d: %f < %f", n, c, prev)
		}
		if c > PatternCeiling {
			t.Errorf("confidence exceeded ceiling at n=%d: %f", n, c)
		}
		prev = c
	}

	if got := PatternConfidence(1); got != 0.6 {
		t.Errorf("PatternConfidence(1) = %f, expected 0.6", got)
	}
	if got := PatternConfidence(100); got != PatternCeiling {
		t.Errorf("PatternConfidence(100) = %f, expected ceiling", got)
	}
}
