package upstream

import (
	"encoding/json"
	"testing"
)

func TestFlexibleID(t *testing.T) {
	cases := map[string]FlexibleID{
		`{"id": 15}`:     "15",
		`{"id": "v-15"}`: "v-15",
		`{"id": null}`:   "",
	}
	for doc, want := range cases {
		var out struct {
			ID FlexibleID `json:"id"`
		}
		if err := json.Unmarshal([]byte(doc), &out); err != nil {
			t.Fatalf("%s: %v", doc, err)
		}
		if out.ID != want {
			t.Errorf("%s: got %q, want %q", doc, out.ID, want)
		}
	}

	var bad struct {
		ID FlexibleID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id": true}`), &bad); err == nil {
		t.Fatal("expected error for boolean id")
	}
}
