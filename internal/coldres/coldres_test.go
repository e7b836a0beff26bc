package coldres

import (
	"testing"
	"time"
)

func TestTotalSeconds(t *testing.T) {
	cases := []struct {
		resistance float64
		want       float64
	}{
		{0, 500},
		{50, 750},
		{100, 1000},
		{250, 1750},
	}
	for _, c := range cases {
		if got := TotalSeconds(c.resistance); got != c.want {
			t.Errorf("TotalSeconds(%v) = %v, want %v", c.resistance, got, c.want)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(50); got != 12*time.Minute+30*time.Second {
		t.Errorf("Duration(50) = %v, want 12m30s", got)
	}
}
