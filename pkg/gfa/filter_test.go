package gfa

import (
	"bytes"
	"reflect"
	"testing"
)

func TestExcludedSegments(t *testing.T) {
	names := []string{"barcode1", "barcode2", "geneA", "geneB", "spacer"}

	tests := []struct {
		name string
		cfg  FilterConfig
		want map[string]bool
	}{
		{
			name: "no rules keeps everything",
			cfg:  FilterConfig{},
			want: map[string]bool{},
		},
		{
			name: "include excludes everything else",
			cfg:  FilterConfig{Include: []string{"geneA"}},
			want: map[string]bool{"barcode1": true, "barcode2": true, "geneB": true, "spacer": true},
		},
		{
			name: "include prefix",
			cfg:  FilterConfig{IncludePrefix: []string{"gene"}},
			want: map[string]bool{"barcode1": true, "barcode2": true, "spacer": true},
		},
		{
			name: "exclude",
			cfg:  FilterConfig{Exclude: []string{"spacer"}},
			want: map[string]bool{"spacer": true},
		},
		{
			name: "exclude prefix",
			cfg:  FilterConfig{ExcludePrefix: []string{"barcode"}},
			want: map[string]bool{"barcode1": true, "barcode2": true},
		},
		{
			name: "exclude wins over include",
			cfg:  FilterConfig{Include: []string{"geneA", "geneB"}, Exclude: []string{"geneB"}},
			want: map[string]bool{"barcode1": true, "barcode2": true, "geneB": true, "spacer": true},
		},
		{
			name: "exclude prefix wins over include prefix",
			cfg:  FilterConfig{IncludePrefix: []string{"gene"}, ExcludePrefix: []string{"geneB"}},
			want: map[string]bool{"barcode1": true, "barcode2": true, "geneB": true, "spacer": true},
		},
	}

	for _, test := range tests {
		got := ExcludedSegments(names, test.cfg)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: ExcludedSegments = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestExcludedSegmentsIdempotent(t *testing.T) {
	names := []string{"barcode1", "barcode2", "geneA", "geneB"}
	cfg := FilterConfig{IncludePrefix: []string{"gene"}, Exclude: []string{"geneB"}}

	first := ExcludedSegments(names, cfg)

	var kept []string
	for _, name := range names {
		if !first[name] {
			kept = append(kept, name)
		}
	}
	second := ExcludedSegments(kept, cfg)
	if len(second) != 0 {
		t.Errorf("filtering twice removed more segments: %v", second)
	}
}

func TestFilter(t *testing.T) {
	g, err := Read(bytes.NewReader([]byte(testGfa)))
	if err != nil {
		t.Fatal(err)
	}

	fg := g.Filter(FilterConfig{Exclude: []string{"s2"}})

	if want := []string{"s1", "s3"}; !reflect.DeepEqual(fg.Names(), want) {
		t.Errorf("filtered names = %v, want %v", fg.Names(), want)
	}
	if len(fg.Links) != 0 {
		t.Errorf("links touching excluded segment survived: %v", fg.Links)
	}

	// the original is untouched
	if len(g.Segments) != 3 || len(g.Links) != 2 {
		t.Errorf("filter mutated its receiver: %v %v", g.Segments, g.Links)
	}
}
