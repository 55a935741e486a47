package matching

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseSkills(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect SkillSet
	}{
		{"", nil},
		{"  ", nil},
		{",,", SkillSet{}},
		{"Python, Excel", SkillSet{"python", "excel"}},
		{" SQL ,sql, , Go", SkillSet{"sql", "go"}},
		{"Machine Learning", SkillSet{"machine learning"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseSkills(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %#v, got %#v", tt.expect, got)
			}
		})
	}
}

func TestSkillSetIntersect(t *testing.T) {
	t.Parallel()

	a := ParseSkills("go, sql, docker")
	b := ParseSkills("docker,GO,java")

	if got := a.Intersect(b); !reflect.DeepEqual(got, []string{"go", "docker"}) {
		t.Fatalf("unexpected intersection: %v", got)
	}
	if got := a.Intersect(nil); got != nil {
		t.Fatalf("expected nil intersection, got %v", got)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	valid := map[string]Category{
		"":        CategoryUnknown,
		"gen":     CategoryGeneral,
		"General": CategoryGeneral,
		" obc ":   CategoryOBC,
		"SC":      CategorySC,
		"st":      CategoryST,
	}
	for in, expect := range valid {
		got, err := ParseCategory(in)
		if err != nil {
			t.Fatalf("ParseCategory(%q) returned unexpected error: %v", in, err)
		}
		if got != expect {
			t.Fatalf("ParseCategory(%q) = %v, want %v", in, got, expect)
		}
	}

	got, err := ParseCategory("S C")
	if !errors.Is(err, ErrUnknownCategory) || got != CategoryUnknown {
		t.Fatalf("expected unknown category error, got %v, %v", got, err)
	}

	for _, c := range Categories() {
		parsed, err := ParseCategory(c.String())
		if err != nil || parsed != c {
			t.Fatalf("expected %v to round-trip, got %v, %v", c, parsed, err)
		}
	}
}

func TestParseCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		unlimited bool
		keep      int
		invalid   bool
	}{
		{input: "", unlimited: true, keep: 10},
		{input: " 3 ", keep: 3},
		{input: "2.0", keep: 2},
		{input: "0", keep: 0, invalid: true},
		{input: "-4", keep: 0, invalid: true},
		{input: "2.5", keep: 0, invalid: true},
		{input: "many", keep: 0, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCapacity(tt.input)
			if tt.invalid != errors.Is(err, ErrInvalidCapacity) {
				t.Fatalf("expected invalid=%v, got error %v", tt.invalid, err)
			}
			if got.IsUnlimited() != tt.unlimited {
				t.Fatalf("expected unlimited=%v, got %v", tt.unlimited, got)
			}
			if k := got.Keep(10); k != tt.keep {
				t.Fatalf("expected to keep %d of 10, got %d", tt.keep, k)
			}
		})
	}

	if Limit(-2).Keep(5) != 0 {
		t.Fatalf("expected negative limit to clamp to zero")
	}
	if Limit(8).Keep(5) != 5 {
		t.Fatalf("expected limit above available count to keep all")
	}
}

func TestCapacityJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Capacity Capacity `json:"capacity"`
	}

	for _, c := range []Capacity{Unlimited(), Limit(0), Limit(3)} {
		data, err := json.Marshal(wrapper{Capacity: c})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var back wrapper
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unexpected error for %s: %v", data, err)
		}
		if back.Capacity != c {
			t.Fatalf("expected %v, got %v (%s)", c, back.Capacity, data)
		}
	}

	var bad wrapper
	if err := json.Unmarshal([]byte(`{"capacity":"lots"}`), &bad); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}
