package config

import (
	"testing"
)

func TestParseAdminIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr bool
	}{
		{name: "single", input: "42", want: []int64{42}},
		{name: "multiple", input: "1,2,3", want: []int64{1, 2, 3}},
		{name: "spaces", input: " 1 , 2 ", want: []int64{1, 2}},
		{name: "trailing comma", input: "1,2,", want: []int64{1, 2}},
		{name: "empty", input: "", want: nil},
		{name: "not a number", input: "1,abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAdminIDs(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAdminIDs(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAdminIDs(%q): %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseAdminIDs(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseAdminIDs(%q)[%d] = %d, want %d", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAdminSet(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{AdminIDs: []int64{1, 2}}}

	set := cfg.AdminSet()
	if !set[1] || !set[2] {
		t.Errorf("admin set missing configured ids: %v", set)
	}
	if set[3] {
		t.Error("unexpected id in admin set")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mongo.URI != DefaultMongoURI {
		t.Errorf("mongo uri = %q", cfg.Mongo.URI)
	}
	if cfg.Telegram.PollTimeout != DefaultPollTimeout {
		t.Errorf("poll timeout = %d", cfg.Telegram.PollTimeout)
	}
	if !cfg.Stats.Enabled || cfg.Stats.Spec != DefaultStatsSpec {
		t.Errorf("stats defaults = %+v", cfg.Stats)
	}
}
