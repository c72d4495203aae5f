package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

func TestCalculateAge(t *testing.T) {
	today := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		dob  domain.Date
		want int
	}{
		{"birthday passed this year", domain.NewDate(1990, time.March, 10), 35},
		{"birthday later this year", domain.NewDate(1990, time.September, 1), 34},
		{"birthday today", domain.NewDate(1990, time.June, 15), 35},
		{"birthday tomorrow", domain.NewDate(1990, time.June, 16), 34},
		{"same month earlier day", domain.NewDate(1990, time.June, 14), 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.CalculateAge(tt.dob, today); got != tt.want {
				t.Errorf("CalculateAge(%s) = %d, want %d", tt.dob, got, tt.want)
			}
		})
	}
}

func TestOrderKey(t *testing.T) {
	allowed := []string{"id", "name"}

	tests := []struct {
		ordering string
		wantKey  string
		wantDesc bool
	}{
		{"name", "name", false},
		{"-name", "name", true},
		{"id", "id", false},
		{"address", "id", false}, // unknown key falls back to default
		{"-address", "id", false},
		{"", "id", false},
	}
	for _, tt := range tests {
		p := domain.ListParams{Ordering: tt.ordering}
		key, desc := p.OrderKey(allowed, "id", false)
		if key != tt.wantKey || desc != tt.wantDesc {
			t.Errorf("OrderKey(%q) = (%q, %v), want (%q, %v)",
				tt.ordering, key, desc, tt.wantKey, tt.wantDesc)
		}
	}
}

func TestListParams_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		in           domain.ListParams
		wantPage     int
		wantPageSize int
	}{
		{"zero value gets defaults", domain.ListParams{}, 1, 20},
		{"negative page clamps to 1", domain.ListParams{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page_size caps at the maximum", domain.ListParams{Page: 1, PageSize: 150}, 1, 100},
		{"maximum passes through", domain.ListParams{Page: 2, PageSize: 100}, 2, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			if tt.in.Page != tt.wantPage || tt.in.PageSize != tt.wantPageSize {
				t.Errorf("got page %d size %d, want page %d size %d",
					tt.in.Page, tt.in.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestNewPage_Links(t *testing.T) {
	// Middle page links both ways.
	p := domain.NewPage([]int{1, 2}, 50, 2, 20)
	if p.Previous == nil || *p.Previous != 1 {
		t.Errorf("expected previous 1, got %v", p.Previous)
	}
	if p.Next == nil || *p.Next != 3 {
		t.Errorf("expected next 3, got %v", p.Next)
	}

	// First and last pages have null edges.
	p = domain.NewPage([]int{1}, 5, 1, 20)
	if p.Previous != nil || p.Next != nil {
		t.Errorf("single page: expected null links, got %v %v", p.Previous, p.Next)
	}

	// Nil results render as an empty array, never null.
	p = domain.NewPage[int](nil, 0, 1, 20)
	if p.Results == nil {
		t.Error("expected [] results for an empty page")
	}
}

func TestPageWindow(t *testing.T) {
	if lo, hi := domain.PageWindow(5, 1, 2); lo != 0 || hi != 2 {
		t.Errorf("page 1: got [%d,%d)", lo, hi)
	}
	if lo, hi := domain.PageWindow(5, 3, 2); lo != 4 || hi != 5 {
		t.Errorf("last partial page: got [%d,%d)", lo, hi)
	}
	if lo, hi := domain.PageWindow(5, 9, 2); lo != 5 || hi != 5 {
		t.Errorf("past the end: got [%d,%d)", lo, hi)
	}
}

func TestMoney_WireFormat(t *testing.T) {
	m, err := domain.MoneyFromString("1500")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Text() != "1500.00" {
		t.Errorf("Text() = %q, want 1500.00", m.Text())
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"1500.00"` {
		t.Errorf("marshal = %s, want \"1500.00\"", b)
	}

	if _, err := domain.MoneyFromString("abc"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestDate_Unmarshal(t *testing.T) {
	var d domain.Date
	if err := json.Unmarshal([]byte(`"1990-03-10"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 1990 || d.Month() != time.March || d.Day() != 10 {
		t.Errorf("unexpected date %s", d)
	}

	if err := json.Unmarshal([]byte(`"10/03/1990"`), &d); err == nil {
		t.Error("expected error for wrong layout")
	}

	var null domain.Date
	if err := json.Unmarshal([]byte(`null`), &null); err != nil {
		t.Fatalf("null: %v", err)
	}
	if !null.IsZero() {
		t.Error("expected zero date for null")
	}
}
