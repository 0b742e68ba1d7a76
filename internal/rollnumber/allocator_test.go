package rollnumber

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

type fakeUsedSet struct {
	used map[string]bool
	err  error
}

func (f *fakeUsedSet) RollNumberExists(ctx context.Context, roll string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.used[roll], nil
}

func TestAllocate_Format(t *testing.T) {
	t.Parallel()

	a := New("AG7", &fakeUsedSet{used: map[string]bool{}})
	a.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	a.intn = func(n int) int { return 3321 } // 1000+3321 = 4321

	got, err := a.Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate() err=%v", err)
	}
	if want := "20240501AG74321"; got != want {
		t.Fatalf("Allocate()=%q, want %q", got, want)
	}
}

func TestAllocate_MatchesPattern(t *testing.T) {
	t.Parallel()

	a := New("X1", &fakeUsedSet{used: map[string]bool{}})
	got, err := a.Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate() err=%v", err)
	}
	if ok := regexp.MustCompile(`^\d{8}X1[1-9]\d{3}$`).MatchString(got); !ok {
		t.Fatalf("Allocate()=%q does not match date+agent+4 digits", got)
	}
}

func TestAllocate_SkipsUsedNumbers(t *testing.T) {
	t.Parallel()

	a := New("AG7", &fakeUsedSet{used: map[string]bool{
		"20240501AG74321": true,
		"20240501AG75000": true,
	}})
	a.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	draws := []int{3321, 4000, 7777} // first two collide
	a.intn = func(n int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	}

	got, err := a.Allocate(context.Background())
	if err != nil {
		t.Fatalf("Allocate() err=%v", err)
	}
	if want := "20240501AG78777"; got != want {
		t.Fatalf("Allocate()=%q, want %q", got, want)
	}
}

func TestAllocate_NeverReturnsUsed(t *testing.T) {
	t.Parallel()

	used := map[string]bool{}
	set := &fakeUsedSet{used: used}
	a := New("AG7", set)
	for i := 0; i < 200; i++ {
		roll, err := a.Allocate(context.Background())
		if err != nil {
			t.Fatalf("Allocate() err=%v", err)
		}
		if used[roll] {
			t.Fatalf("Allocate() returned used number %q", roll)
		}
		used[roll] = true
	}
}

func TestAllocate_PropagatesLookupError(t *testing.T) {
	t.Parallel()

	boom := errors.New("store down")
	a := New("AG7", &fakeUsedSet{err: boom})
	if _, err := a.Allocate(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Allocate() err=%v, want %v", err, boom)
	}
}

func TestAllocate_HonorsContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := New("AG7", &fakeUsedSet{used: map[string]bool{}})
	if _, err := a.Allocate(ctx); err == nil {
		t.Fatal("Allocate() err=nil with cancelled context")
	}
}
