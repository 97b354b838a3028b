package diff

import (
	"reflect"
	"testing"

	"github.com/deusflow/trends/internal/trend"
)

func rows(keys ...string) []trend.EnrichedRow {
	out := make([]trend.EnrichedRow, len(keys))
	for i, k := range keys {
		out[i] = trend.EnrichedRow{Key: k, Item: trend.Item{Title: k}}
	}
	return out
}

func TestComputeFindsNewItems(t *testing.T) {
	seen := map[string]bool{"a": true, "b": true}

	res := Compute(rows("a", "c"), seen)

	if !reflect.DeepEqual(res.NewKeys, []string{"c"}) {
		t.Errorf("NewKeys = %v, want [c]", res.NewKeys)
	}
	if !reflect.DeepEqual(res.AllKeys, []string{"a", "c"}) {
		t.Errorf("AllKeys = %v, want [a c]", res.AllKeys)
	}
	if !res.ShouldNotify {
		t.Error("ShouldNotify = false, want true when a new key is present")
	}
	if res.Rows[0].IsNew || !res.Rows[1].IsNew {
		t.Errorf("IsNew flags = [%v %v], want [false true]", res.Rows[0].IsNew, res.Rows[1].IsNew)
	}
}

func TestComputeSilentWhenSubsetOfSeen(t *testing.T) {
	seen := map[string]bool{"a": true, "b": true, "c": true}

	res := Compute(rows("a", "b"), seen)

	if res.ShouldNotify {
		t.Error("ShouldNotify = true, want false when every key was already seen")
	}
	if len(res.NewKeys) != 0 {
		t.Errorf("NewKeys = %v, want empty", res.NewKeys)
	}
	// Keys are still reported for persistence (replace mode shrinks the set).
	if !reflect.DeepEqual(res.AllKeys, []string{"a", "b"}) {
		t.Errorf("AllKeys = %v, want [a b]", res.AllKeys)
	}
}

func TestComputeDeduplicatesKeysKeepsRows(t *testing.T) {
	res := Compute(rows("x", "x", "y"), map[string]bool{})

	if len(res.Rows) != 3 {
		t.Errorf("display rows = %d, want all 3 kept", len(res.Rows))
	}
	if !reflect.DeepEqual(res.AllKeys, []string{"x", "y"}) {
		t.Errorf("AllKeys = %v, want deduplicated [x y]", res.AllKeys)
	}
	if !reflect.DeepEqual(res.NewKeys, []string{"x", "y"}) {
		t.Errorf("NewKeys = %v, want deduplicated [x y]", res.NewKeys)
	}
}

func TestComputeIgnoresEmptyKeys(t *testing.T) {
	res := Compute(rows("", "a"), map[string]bool{})
	if !reflect.DeepEqual(res.AllKeys, []string{"a"}) {
		t.Errorf("AllKeys = %v, want [a]", res.AllKeys)
	}
	if res.Rows[0].IsNew {
		t.Error("row with empty key must not be marked new")
	}
}

func TestDegrade(t *testing.T) {
	res := Degrade(rows("a", "b"))

	if !res.Degraded {
		t.Error("Degraded = false")
	}
	if !res.ShouldNotify {
		t.Error("degraded run must still deliver the baseline list")
	}
	for i, row := range res.Rows {
		if row.IsNew {
			t.Errorf("row %d marked new in degraded mode", i)
		}
	}
	if len(res.AllKeys) != 0 {
		t.Errorf("degraded run must not persist keys, got %v", res.AllKeys)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("additive"); err != nil || m != Additive {
		t.Errorf("ParseMode(additive) = %v, %v", m, err)
	}
	if m, err := ParseMode("replace"); err != nil || m != Replace {
		t.Errorf("ParseMode(replace) = %v, %v", m, err)
	}
	if _, err := ParseMode("wipe"); err == nil {
		t.Error("ParseMode(wipe) should fail")
	}
}
