package dedup

import (
	"fmt"
	"strings"
	"testing"
)

// words returns n distinct tokens with the given prefix.
func words(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func TestTextCache(t *testing.T) {
	t.Parallel()

	t.Run("add reports first insertion only", func(t *testing.T) {
		t.Parallel()

		c := NewTextCache(3)
		if !c.Add("alpha") {
			t.Error("first Add should return true")
		}
		if c.Add("alpha") {
			t.Error("second Add of the same text should return false")
		}
		if !c.Contains("alpha") {
			t.Error("Contains should report cached text")
		}
		if c.Len() != 1 {
			t.Errorf("Len = %d, want 1", c.Len())
		}
	})

	t.Run("evicts oldest past capacity", func(t *testing.T) {
		t.Parallel()

		c := NewTextCache(2)
		c.Add("a")
		c.Add("b")
		c.Add("c")

		if c.Contains("a") {
			t.Error("oldest text should have been evicted")
		}
		if !c.Contains("b") || !c.Contains("c") {
			t.Error("newer texts should be retained")
		}
		if c.Len() != 2 {
			t.Errorf("Len = %d, want 2", c.Len())
		}
		if !c.Add("a") {
			t.Error("evicted text should be accepted again")
		}
	})

	t.Run("non-positive capacity uses default", func(t *testing.T) {
		t.Parallel()

		c := NewTextCache(0)
		for i := 0; i < DefaultCapacity+1; i++ {
			c.Add(fmt.Sprintf("page %d", i))
		}
		if c.Len() != DefaultCapacity {
			t.Errorf("Len = %d, want %d", c.Len(), DefaultCapacity)
		}
		if c.Contains("page 0") {
			t.Error("first page should have been evicted")
		}
	})
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a      []string
		b      []string
		want   float64
		wantOK bool
	}{
		{
			name:   "identical",
			a:      []string{"x", "y"},
			b:      []string{"y", "x"},
			want:   1,
			wantOK: true,
		},
		{
			name:   "frequencies ignored",
			a:      []string{"x", "x", "x", "y"},
			b:      []string{"x", "y"},
			want:   1,
			wantOK: true,
		},
		{
			name:   "divided by smaller side",
			a:      []string{"x", "y"},
			b:      []string{"x", "y", "z", "w"},
			want:   1,
			wantOK: true,
		},
		{
			name:   "half shared",
			a:      []string{"x", "y"},
			b:      []string{"x", "z"},
			want:   0.5,
			wantOK: true,
		},
		{
			name:   "empty side skips",
			a:      nil,
			b:      []string{"x"},
			want:   0,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Overlap(Frequencies(tt.a), Frequencies(tt.b))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Overlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrequencies(t *testing.T) {
	t.Parallel()

	freq := Frequencies(strings.Fields("a b a c a"))
	if freq["a"] != 3 || freq["b"] != 1 || freq["c"] != 1 {
		t.Errorf("Frequencies = %v", freq)
	}
	if len(freq) != 3 {
		t.Errorf("len = %d, want 3", len(freq))
	}
}

func TestTokenCache(t *testing.T) {
	t.Parallel()

	t.Run("threshold is inclusive", func(t *testing.T) {
		t.Parallel()

		c := NewTokenCache(10)
		c.Add(Frequencies(words("w", 10)))

		// 9 of 10 shared.
		nine := append(words("w", 9), "other")
		if !c.NearDuplicate(Frequencies(nine), 0.9) {
			t.Error("overlap 0.9 should be a near duplicate")
		}

		// 8 of 10 shared.
		eight := append(words("w", 8), "other1", "other2")
		if c.NearDuplicate(Frequencies(eight), 0.9) {
			t.Error("overlap 0.8 should not be a near duplicate")
		}
	})

	t.Run("empty histogram never matches", func(t *testing.T) {
		t.Parallel()

		c := NewTokenCache(10)
		c.Add(Frequencies(nil))
		c.Add(Frequencies(words("w", 3)))

		if c.NearDuplicate(Frequencies(nil), 0.9) {
			t.Error("empty histogram should not be a near duplicate")
		}
	})

	t.Run("evicts oldest past capacity", func(t *testing.T) {
		t.Parallel()

		c := NewTokenCache(1)
		c.Add(Frequencies(words("a", 5)))
		c.Add(Frequencies(words("b", 5)))

		if c.Len() != 1 {
			t.Errorf("Len = %d, want 1", c.Len())
		}
		if c.NearDuplicate(Frequencies(words("a", 5)), 0.9) {
			t.Error("evicted histogram should no longer match")
		}
		if !c.NearDuplicate(Frequencies(words("b", 5)), 0.9) {
			t.Error("retained histogram should match")
		}
	})
}

func TestEngineCheck(t *testing.T) {
	t.Parallel()

	t.Run("unique then exact duplicate", func(t *testing.T) {
		t.Parallel()

		e := NewEngine()
		text := strings.Join(words("w", 20), " ")
		tokens := words("w", 20)

		if got := e.Check(text, tokens); got != Unique {
			t.Errorf("first Check = %v, want %v", got, Unique)
		}
		if got := e.Check(text, tokens); got != ExactDuplicate {
			t.Errorf("second Check = %v, want %v", got, ExactDuplicate)
		}
	})

	t.Run("near duplicate is not cached in token stage", func(t *testing.T) {
		t.Parallel()

		e := NewEngine()
		base := words("w", 10)
		if got := e.Check(strings.Join(base, " "), base); got != Unique {
			t.Fatalf("base Check = %v, want %v", got, Unique)
		}

		near := append(words("w", 9), "extra")
		if got := e.Check(strings.Join(near, " "), near); got != NearDuplicate {
			t.Errorf("near Check = %v, want %v", got, NearDuplicate)
		}
		if e.tokens.Len() != 1 {
			t.Errorf("token cache Len = %d, want 1", e.tokens.Len())
		}
		// The text of a near duplicate still enters the exact cache.
		if got := e.Check(strings.Join(near, " "), near); got != ExactDuplicate {
			t.Errorf("repeat near Check = %v, want %v", got, ExactDuplicate)
		}
	})

	t.Run("distinct pages are unique", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(WithThreshold(0.9))
		a := words("a", 10)
		b := append(words("a", 8), "b1", "b2")

		if got := e.Check(strings.Join(a, " "), a); got != Unique {
			t.Errorf("Check(a) = %v, want %v", got, Unique)
		}
		if got := e.Check(strings.Join(b, " "), b); got != Unique {
			t.Errorf("Check(b) = %v, want %v", got, Unique)
		}
	})

	t.Run("invalid threshold ignored", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(WithThreshold(1.5))
		if e.Threshold() != DefaultThreshold {
			t.Errorf("Threshold = %v, want %v", e.Threshold(), DefaultThreshold)
		}
	})
}

func TestVerdictString(t *testing.T) {
	t.Parallel()

	tests := map[Verdict]string{
		Unique:         "unique",
		ExactDuplicate: "exact-duplicate",
		NearDuplicate:  "near-duplicate",
		Verdict(42):    "unknown",
	}
	for v, want := range tests {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", int(v), got, want)
		}
	}
}
