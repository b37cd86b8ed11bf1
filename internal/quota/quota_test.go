package quota

import (
	"context"
	"testing"
	"time"

	"github.com/meltforce/pivotfit/internal/state"
)

func testKV(t *testing.T) *state.Store {
	t.Helper()
	kv, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// TestIncrementWithinMonth verifies n increments in one calendar month
// count to n.
func TestIncrementWithinMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	tr := NewWithClock(testKV(t), func() time.Time { return now })

	for i := 1; i <= 4; i++ {
		count, err := tr.Increment(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != i {
			t.Errorf("increment %d = %d, want %d", i, count, i)
		}
	}

	remaining, err := tr.Remaining(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != MonthlyAllowance-4 {
		t.Errorf("Remaining = %d, want %d", remaining, MonthlyAllowance-4)
	}
}

// TestMonthRollover verifies the first increment after a month
// boundary yields 1, not priorCount+1, and that Remaining resets
// without writing.
func TestMonthRollover(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 28, 0, 0, 0, 0, time.UTC)
	tr := NewWithClock(testKV(t), func() time.Time { return now })

	for range 7 {
		if _, err := tr.Increment(ctx); err != nil {
			t.Fatal(err)
		}
	}

	now = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	remaining, err := tr.Remaining(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != MonthlyAllowance {
		t.Errorf("Remaining after rollover = %d, want %d", remaining, MonthlyAllowance)
	}

	count, err := tr.Increment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("first increment in new month = %d, want 1", count)
	}
}

// TestYearBoundaryRollover verifies December→January resets even
// though the month number wraps.
func TestYearBoundaryRollover(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)
	tr := NewWithClock(testKV(t), func() time.Time { return now })

	if _, err := tr.Increment(ctx); err != nil {
		t.Fatal(err)
	}

	now = time.Date(2027, time.January, 1, 1, 0, 0, 0, time.UTC)
	count, err := tr.Increment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count after year boundary = %d, want 1", count)
	}
}

// TestRemainingFloorsAtZero verifies over-allowance counts don't go
// negative.
func TestRemainingFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.May, 5, 0, 0, 0, 0, time.UTC)
	tr := NewWithClock(testKV(t), func() time.Time { return now })

	for range MonthlyAllowance + 3 {
		if _, err := tr.Increment(ctx); err != nil {
			t.Fatal(err)
		}
	}

	remaining, err := tr.Remaining(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Errorf("Remaining = %d, want 0", remaining)
	}
}

// TestMissingRecordTreatedAsZero verifies a fresh store reports the
// full allowance.
func TestMissingRecordTreatedAsZero(t *testing.T) {
	ctx := context.Background()
	tr := New(testKV(t))

	remaining, err := tr.Remaining(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if remaining != MonthlyAllowance {
		t.Errorf("Remaining = %d, want %d", remaining, MonthlyAllowance)
	}
	used, err := tr.Used(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if used != 0 {
		t.Errorf("Used = %d, want 0", used)
	}
}
