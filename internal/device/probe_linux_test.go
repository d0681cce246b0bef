//go:build linux

package device

import "testing"

func TestParseRelease(t *testing.T) {
	tests := []struct {
		release string
		level   int
		ok      bool
	}{
		{"6.8.0-45-generic", 608, true},
		{"5.15.153.1-microsoft-standard-WSL2", 515, true},
		{"6.18rc1", 618, true},
		{"garbage", 0, false},
		{"x.y", 0, false},
	}
	for _, tt := range tests {
		level, ok := parseRelease(tt.release)
		if level != tt.level || ok != tt.ok {
			t.Errorf("parseRelease(%q) = %d, %v; want %d, %v", tt.release, level, ok, tt.level, tt.ok)
		}
	}
}
