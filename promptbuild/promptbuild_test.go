package promptbuild

import (
	"strings"
	"testing"

	"github.com/blogforge/backend/keywords"
	"github.com/blogforge/backend/topics"
)

func sampleInputs() (*keywords.Set, *topics.Analysis) {
	set := &keywords.Set{
		Primary:   []string{"cloud cost", "visibility", "budgets"},
		Secondary: []string{"tagging", "finance"},
		Density:   map[string]float64{"cloud cost": 0.02},
	}
	analysis := &topics.Analysis{
		Summary: "Cloud spend is controlled through visibility and shared budgets.",
		Intent:  topics.IntentService,
		Topics:  []string{"cloud cost", "finops"},
	}
	return set, analysis
}

func TestBuildDeterministic(t *testing.T) {
	set, analysis := sampleInputs()
	opts := Options{Tone: ToneTechnical, WordCount: 1200}

	a := Build(set, analysis, opts)
	b := Build(set, analysis, opts)
	if a != b {
		t.Fatal("Build is not deterministic for identical inputs")
	}
}

func TestBuildContents(t *testing.T) {
	set, analysis := sampleInputs()
	prompt := Build(set, analysis, Options{Tone: ToneCasual, WordCount: 900})

	for _, want := range []string{
		"casual", "900 words",
		"cloud cost", "tagging",
		string(topics.IntentService),
		analysis.Summary,
		`"meta_description"`,
		"ONLY a JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildDensityBands(t *testing.T) {
	set, analysis := sampleInputs()

	tests := []struct {
		words int
		want  string
	}{
		{2000, "2.0%"},
		{1000, "1.5%"},
		{500, "1.0%"},
	}
	for _, tt := range tests {
		prompt := Build(set, analysis, Options{Tone: ToneProfessional, WordCount: tt.words})
		if !strings.Contains(prompt, tt.want) {
			t.Errorf("word count %d: prompt missing density target %s", tt.words, tt.want)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	opts := Options{Tone: "sarcastic", WordCount: -5}.Normalize()
	if opts.Tone != ToneProfessional {
		t.Errorf("tone = %q, want professional", opts.Tone)
	}
	if opts.WordCount != DefaultWordCount {
		t.Errorf("word count = %d, want %d", opts.WordCount, DefaultWordCount)
	}
}

func TestNormalizeClampsWordCount(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultWordCount},
		{50, MinWordCount},
		{300, 300},
		{2000, 2000},
		{50000, MaxWordCount},
	}
	for _, tt := range tests {
		if got := (Options{WordCount: tt.in}).Normalize().WordCount; got != tt.want {
			t.Errorf("Normalize word count %d = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBuildEnforcesWordCountBounds(t *testing.T) {
	set, analysis := sampleInputs()

	tests := []struct {
		in   int
		want string
	}{
		{0, "approximately 800 words"},
		{50, "approximately 300 words"},
		{50000, "approximately 2000 words"},
	}
	for _, tt := range tests {
		prompt := Build(set, analysis, Options{WordCount: tt.in})
		if !strings.Contains(prompt, tt.want) {
			t.Errorf("word count %d: prompt missing %q", tt.in, tt.want)
		}
	}
}

func TestBuildOmitMeta(t *testing.T) {
	set, analysis := sampleInputs()

	with := Build(set, analysis, Options{})
	if !strings.Contains(with, "meta description") || !strings.Contains(with, `"meta_description"`) {
		t.Error("default prompt missing meta description instruction")
	}

	without := Build(set, analysis, Options{OmitMeta: true})
	if strings.Contains(without, "meta description") || strings.Contains(without, `"meta_description"`) {
		t.Error("OmitMeta prompt still asks for a meta description")
	}
}
