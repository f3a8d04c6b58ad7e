package rec

import (
	"errors"
	"strings"
	"testing"
)

var errTest = errors.New("test")

func panics(v any) (err error) {
	defer Error(&err)
	panic(v)
}

func wraps(v any, in error) (err error) {
	defer Wrap(&err, "store %s: %w", "runs")
	if v != nil {
		panic(v)
	}
	return in
}

func TestError(t *testing.T) {
	err := panics(errTest)
	if !errors.Is(err, errTest) {
		t.Fatalf("error %v does not wrap the panic value", err)
	}

	err = panics("plain")
	if err == nil || !strings.Contains(err.Error(), "recovered panic: plain") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestWrap(t *testing.T) {
	if err := wraps(nil, nil); err != nil {
		t.Fatalf("Wrap on nil error = %v", err)
	}

	err := wraps(nil, errTest)
	if !errors.Is(err, errTest) || !strings.HasPrefix(err.Error(), "store runs: ") {
		t.Fatalf("unexpected error %v", err)
	}

	err = wraps(errTest, nil)
	if !errors.Is(err, errTest) || !strings.HasPrefix(err.Error(), "store runs: recovered panic") {
		t.Fatalf("unexpected error %v", err)
	}
}
