package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	at := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	c := Fixed(at)
	if !c.Now().Equal(at) {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}
	if !c.Now().Equal(c.Now()) {
		t.Fatal("expected fixed clock to be stable")
	}
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	if got.Before(before) {
		t.Fatalf("expected system clock to move forward, got %v before %v", got, before)
	}
}

func TestFunc(t *testing.T) {
	calls := 0
	c := Func(func() time.Time {
		calls++
		return time.Unix(int64(calls), 0)
	})
	c.Now()
	if got := c.Now(); got.Unix() != 2 {
		t.Fatalf("expected second call to return 2, got %d", got.Unix())
	}
}
