package pagination

import (
	"math"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		def, max      int
		want          Page
	}{
		{"defaults", 0, 0, DefaultPerPage, MaxPerPage, Page{Page: 1, PerPage: 20}},
		{"negative page", -3, 10, DefaultPerPage, MaxPerPage, Page{Page: 1, PerPage: 10}},
		{"clamped", 2, 1000, DefaultPerPage, MaxPerPage, Page{Page: 2, PerPage: 100}},
		{"media clamp", 1, 1000, MediaDefaultPerPage, MediaMaxPerPage, Page{Page: 1, PerPage: 500}},
		{"media default", 1, 0, MediaDefaultPerPage, MediaMaxPerPage, Page{Page: 1, PerPage: 50}},
		{"huge page", math.MaxInt, 100, DefaultPerPage, MaxPerPage, Page{Page: math.MaxInt32/100 + 1, PerPage: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.page, tt.perPage, tt.def, tt.max)
			if got != tt.want {
				t.Fatalf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPageOffset(t *testing.T) {
	p := Normalize(3, 25, DefaultPerPage, MaxPerPage)
	if p.Offset() != 50 || p.Limit() != 25 {
		t.Fatalf("unexpected offset/limit %d/%d", p.Offset(), p.Limit())
	}
	if Normalize(0, 25, DefaultPerPage, MaxPerPage).Offset() != 0 {
		t.Fatal("page 0 should behave as page 1")
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/admin/artists?page=abc&per_page=1000", nil)
	got := FromRequest(req, DefaultPerPage, MaxPerPage)
	if got.Page != 1 || got.PerPage != 100 {
		t.Fatalf("unexpected page %+v", got)
	}
}

func TestFromRequestHugePage(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/public/artists?page=9223372036854775807&per_page=100", nil)
	got := FromRequest(req, DefaultPerPage, MaxPerPage)
	if got.Offset() < 0 || got.Offset() > math.MaxInt32 {
		t.Fatalf("offset %d out of range for page %+v", got.Offset(), got)
	}
}

func TestSearchPattern(t *testing.T) {
	if SearchPattern("  ") != "" {
		t.Fatal("expected empty pattern for blank query")
	}
	if got := SearchPattern("ART"); got != "%ART%" {
		t.Fatalf("unexpected pattern %q", got)
	}
	if got := SearchPattern("50%_off"); got != `%50\%\_off%` {
		t.Fatalf("expected escaped pattern, got %q", got)
	}
}
