package generic_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/warp/funding-engine/generic"
)

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		known bool
	}{
		{"17", 17, true},
		{" 17", 17, true},
		{"17abc", 17, true},
		{"16.9", 16, true},
		{"-3", -3, true},
		{"+4", 4, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"99999999999999999999", math.MaxInt, true},
		{"-99999999999999999999", math.MinInt, true},
	}

	for _, tt := range tests {
		got := generic.ParseMeasure(tt.in)
		v, ok := got.Int()
		if ok != tt.known || (ok && v != tt.want) {
			t.Errorf("ParseMeasure(%q) = %v (known=%v), want %d (known=%v)", tt.in, v, ok, tt.want, tt.known)
		}
	}
}

func TestMeasure_UnknownComparesFalse(t *testing.T) {
	m := generic.UnknownMeasure()
	if m.AtLeast(-1000) || m.AtMost(1000) || m.LessThan(1000) || m.Between(-1000, 1000) {
		t.Error("an unknown measure must fail every comparison")
	}
	if m.String() != "NaN" {
		t.Errorf("expected NaN, got %s", m)
	}
}

func TestMeasure_JSON(t *testing.T) {
	b, _ := json.Marshal([]generic.Measure{generic.NewMeasure(19), generic.UnknownMeasure()})
	if string(b) != "[19,null]" {
		t.Errorf("unexpected JSON %s", b)
	}

	var got []generic.Measure
	if err := json.Unmarshal([]byte(`[19, "20", null, "x"]`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, _ := got[1].Int(); v != 20 {
		t.Errorf("expected 20, got %v", got[1])
	}
	if got[2].Known() || got[3].Known() {
		t.Error("null and garbage should be unknown")
	}

	if err := json.Unmarshal([]byte(`[1e2, 17.9, -0.5]`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i, want := range []int{100, 17, 0} {
		if v, ok := got[i].Int(); !ok || v != want {
			t.Errorf("number %d: expected %d, got %v", i, want, got[i])
		}
	}
}

func TestMoney_String(t *testing.T) {
	if s := generic.NewMoney(345).String(); s != "£345" {
		t.Errorf("expected £345, got %s", s)
	}
	if s := generic.MustParseMoney("345.5").String(); s != "£345.50" {
		t.Errorf("expected £345.50, got %s", s)
	}
}

func TestMoney_Comparisons(t *testing.T) {
	a, b := generic.NewMoney(344), generic.NewMoney(345)
	if !a.LessThan(b) || b.LessThan(b) || !b.Equal(generic.MustParseMoney("345.00")) {
		t.Error("unexpected comparison result")
	}
	if !generic.ZeroMoney().IsZero() || generic.NewMoney(-1).IsPositive() {
		t.Error("unexpected sign result")
	}
}

func TestWindow_OpenForStart(t *testing.T) {
	w := generic.Window{
		LastNewStart:     generic.NewDate(2025, 7, 31),
		CertificationEnd: generic.NewDate(2026, 12, 31),
	}
	if !w.OpenForStart(generic.NewDate(2025, 7, 31)) {
		t.Error("last new start day should be open")
	}
	if w.OpenForStart(generic.NewDate(2025, 8, 1)) {
		t.Error("day after last new start should be closed")
	}
	if !(generic.Window{}).OpenForStart(generic.NewDate(2030, 1, 1)) {
		t.Error("an unbounded window is always open")
	}
}

func TestWindow_Validate(t *testing.T) {
	w := generic.Window{
		LastNewStart:     generic.NewDate(2026, 1, 1),
		CertificationEnd: generic.NewDate(2025, 1, 1),
	}
	if err := w.Validate(); err == nil {
		t.Error("expected error for reversed window")
	}
}

func TestParseStreamID(t *testing.T) {
	generic.RegisterStream(generic.StreamDescriptor{ID: "test-stream", Title: "Test", Domain: "test"})

	if _, err := generic.ParseStreamID("test-stream"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := generic.ParseStreamID("nope"); err == nil {
		t.Error("expected ErrUnknownStream")
	}
	if got := generic.ListStreamsByDomain("test"); len(got) != 1 || got[0].Title != "Test" {
		t.Errorf("unexpected streams: %+v", got)
	}
}
