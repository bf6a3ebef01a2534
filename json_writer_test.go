package tradebook

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("simple object", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("a", 1)
		w.Append("b", "hello")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"a":1,"b":"hello"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("cents", func(t *testing.T) {
		var w jsonObjectWriter
		w.Cents("a", decimal.RequireFromString("10.104"))
		w.Cents("b", decimal.RequireFromString("10.105"))
		w.Cents("c", decimal.RequireFromString("-3"))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"a":10.1,"b":10.11,"c":-3}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("escaped key", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append(`a"b`, true)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := `{"a\"b":true}`; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("marshal error", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("a", make(chan int))
		w.Append("b", 1)
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("expected an error")
		}
	})
}
