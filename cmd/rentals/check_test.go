package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"rentals/pkg/model"
)

const houseFixture = `{
  "resource": {"id": "house-1", "kind": "unique_house", "name": "Sea View", "location": "Haifa"},
  "check_in": "2026-06-05T20:00:00Z",
  "check_out": "2026-06-08T11:00:00Z",
  "reservations": [
    {"id": "r1", "guest_id": "g1", "check_in": "2026-06-01T14:00:00Z", "check_out": "2026-06-05T11:00:00Z"}
  ]
}`

const centerFixture = `{
  "resource": {"id": "center-1", "kind": "property_center", "name": "Harbor", "location": "Haifa", "total_inventory": 2},
  "check_in": "2026-06-01T14:00:00Z",
  "check_out": "2026-06-03T11:00:00Z",
  "reservations": [
    {"check_in": "2026-06-01T14:00:00Z", "check_out": "2026-06-04T11:00:00Z"},
    {"check_in": "2026-06-01T14:00:00Z", "check_out": "2026-06-04T11:00:00Z", "status": "cancelled"}
  ]
}`

func TestRunCheck(t *testing.T) {
	tests := []struct {
		name         string
		fixture      string
		strategy     string
		wantAvail    bool
		wantReason   string
		wantConflict string
	}{
		{name: "house inside cleaning buffer", fixture: houseFixture, strategy: "sweep", wantReason: "buffer_overlap", wantConflict: "r1"},
		{name: "center with cancelled stay, sweep", fixture: centerFixture, strategy: "sweep", wantAvail: true, wantReason: "available"},
		{name: "center with cancelled stay, scan", fixture: centerFixture, strategy: "scan", wantAvail: true, wantReason: "available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runCheck(strings.NewReader(tt.fixture), &out, tt.strategy); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var got checkResult
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatalf("invalid output %q: %v", out.String(), err)
			}
			if got.Available != tt.wantAvail || got.Reason != tt.wantReason || got.ConflictingID != tt.wantConflict {
				t.Errorf("unexpected result: %+v", got)
			}
		})
	}
}

func TestRunCheck_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fixture  string
		strategy string
		wantErr  error
	}{
		{name: "malformed json", fixture: `{`, strategy: "sweep"},
		{name: "unknown strategy", fixture: houseFixture, strategy: "guess"},
		{
			name:     "center without inventory",
			fixture:  `{"resource": {"kind": "property_center", "name": "Harbor", "location": "Haifa"}}`,
			strategy: "sweep",
			wantErr:  model.ErrInvalidCapacity,
		},
		{
			name: "inverted reservation",
			fixture: `{"resource": {"kind": "unique_house", "name": "Sea View", "location": "Haifa"},
			  "reservations": [{"check_in": "2026-06-05T11:00:00Z", "check_out": "2026-06-01T14:00:00Z"}]}`,
			strategy: "sweep",
			wantErr:  model.ErrInvalidRange,
		},
		{
			name: "stay longer than the maximum",
			fixture: `{"resource": {"kind": "property_center", "name": "Harbor", "location": "Haifa", "total_inventory": 2},
			  "check_in": "2026-06-01T14:00:00Z", "check_out": "9999-06-01T11:00:00Z"}`,
			strategy: "sweep",
			wantErr:  model.ErrStayTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCheck(strings.NewReader(tt.fixture), &bytes.Buffer{}, tt.strategy)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "check"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %s, got %v", name, err)
		}
	}
}
