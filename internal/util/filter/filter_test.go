package filter

import (
	"reflect"
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		in   string
		want bool
	}{
		{"empty config matches all", Config{}, "anything.bin", true},
		{"include by extension", Config{Include: []string{"*.png"}}, "a.png", true},
		{"include is case-insensitive", Config{Include: []string{"*.png"}}, "A.PNG", true},
		{"include miss", Config{Include: []string{"*.png"}}, "a.zip", false},
		{"include matches base of a folder member", Config{Include: []string{"*.png"}}, "trip/day1/a.png", true},
		{"exclude wins over include", Config{Include: []string{"*.png"}, Exclude: []string{"draft*"}}, "draft1.png", false},
		{"search needs every term", Config{Search: []string{"final", "report"}}, "Final_Report.pdf", true},
		{"search miss", Config{Search: []string{"final", "invoice"}}, "Final_Report.pdf", false},
		{"malformed pattern never matches", Config{Include: []string{"[a-"}}, "a.png", false},
		{"double star prefix", Config{PathInclude: []string{"**/report.pdf"}}, "a/b/report.pdf", true},
		{"double star prefix at root", Config{PathInclude: []string{"**/report.pdf"}}, "report.pdf", true},
		{"double star suffix", Config{PathInclude: []string{"photos/**"}}, "photos/2024/a.png", true},
		{"double star suffix miss", Config{PathInclude: []string{"photos/**"}}, "docs/a.png", false},
		{"double star middle", Config{PathInclude: []string{"trip/**/a.png"}}, "trip/x/y/a.png", true},
		{"double star middle adjacent", Config{PathInclude: []string{"trip/**/a.png"}}, "trip/a.png", true},
		{"double star alone", Config{PathInclude: []string{"**"}}, "a/b/c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Match(tt.in); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyKeepsOrder(t *testing.T) {
	names := []string{"b.png", "a.zip", "c.png"}
	got := Apply(names, func(s string) string { return s }, Config{Include: []string{"*.png"}})
	if want := []string{"b.png", "c.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestParsePatternList(t *testing.T) {
	if got := ParsePatternList(""); got != nil {
		t.Errorf("empty input should give nil, got %v", got)
	}
	got := ParsePatternList(" *.png, ,*.jpg ")
	if want := []string{"*.png", "*.jpg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePatternList() = %v, want %v", got, want)
	}
}
