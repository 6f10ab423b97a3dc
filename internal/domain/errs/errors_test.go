package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesSentinel(t *testing.T) {
	cases := []struct {
		err  error
		want error
		kind Kind
	}{
		{InvalidInput("normalize", "empty ticker"), ErrInvalidInput, KindInvalidInput},
		{InvalidData("basket", "fx must be positive"), ErrInvalidData, KindInvalidData},
		{MissingData("composition", "no rows"), ErrMissingData, KindMissingData},
	}
	for _, c := range cases {
		wrapped := fmt.Errorf("outer: %w", c.err)
		if !errors.Is(wrapped, c.want) {
			t.Errorf("%v: expected errors.Is(%v)", c.err, c.want)
		}
		if KindOf(wrapped) != c.kind {
			t.Errorf("%v: kind %v, want %v", c.err, KindOf(wrapped), c.kind)
		}
	}
}

func TestErrorDoesNotMatchOtherKinds(t *testing.T) {
	err := InvalidInput("op", "bad")
	if errors.Is(err, ErrInvalidData) || errors.Is(err, ErrMissingData) {
		t.Fatalf("kinds must stay distinct")
	}
}

func TestErrorMessage(t *testing.T) {
	err := MissingData("load", "file %s", "a.csv").Wrap(errors.New("boom"))
	if got := err.Error(); got != "load: file a.csv: boom" {
		t.Fatalf("unexpected message %q", got)
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("plain error should be unknown")
	}
}
