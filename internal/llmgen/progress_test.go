package llmgen

import (
	"testing"
	"time"
)

func TestThrottleDropsBurst(t *testing.T) {
	var delivered []string
	th := NewThrottle(time.Second, func(text string) {
		delivered = append(delivered, text)
	})

	base := time.Unix(1000, 0)
	clock := base
	th.now = func() time.Time { return clock }

	th.Notify("a")
	th.Notify("ab")
	clock = base.Add(500 * time.Millisecond)
	th.Notify("abc")
	clock = base.Add(1100 * time.Millisecond)
	th.Notify("abcd")

	want := []string{"a", "abcd"}
	if len(delivered) != len(want) {
		t.Fatalf("delivered = %v, want %v", delivered, want)
	}
	for i := range want {
		if delivered[i] != want[i] {
			t.Fatalf("delivered[%d] = %q, want %q", i, delivered[i], want[i])
		}
	}
}

func TestThrottleNilSafe(t *testing.T) {
	var th *Throttle
	th.Notify("ignored")

	th = NewThrottle(time.Second, nil)
	th.Notify("ignored")
}
