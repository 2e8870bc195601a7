package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJSONTimeUnmarshalVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"rfc3339", `"2025-05-16T15:32:25Z"`},
		{"rfc3339 with offset", `"2025-05-16T15:32:25+07:00"`},
		{"naive microseconds", `"2025-05-16T15:32:25.181226"`},
		{"naive milliseconds", `"2025-05-16T15:32:25.000"`},
		{"naive no fraction", `"2025-05-16T15:32:25"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jt JSONTime
			if err := json.Unmarshal([]byte(tt.input), &jt); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			got := jt.Time()
			if got.Year() != 2025 || got.Month() != time.May || got.Second() != 25 {
				t.Errorf("parsed %s into %s", tt.input, got)
			}
		})
	}
}

func TestJSONTimeUnmarshalRejectsGarbage(t *testing.T) {
	var jt JSONTime
	if err := json.Unmarshal([]byte(`"next tuesday"`), &jt); err == nil {
		t.Error("expected an error for an unparseable timestamp")
	}
}

func TestJSONTimeMarshalEmitsRFC3339(t *testing.T) {
	jt := JSONTime(time.Date(2025, 5, 16, 15, 32, 25, 0, time.UTC))
	out, err := json.Marshal(jt)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"2025-05-16T15:32:25Z"` {
		t.Errorf("MarshalJSON = %s", out)
	}
}
