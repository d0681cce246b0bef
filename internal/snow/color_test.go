package snow

import (
	"image/color"
	"math"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#014298", DefaultFlakeColor, false},
		{"ffffff", RGB{R: 1, G: 1, B: 1}, false},
		{" #000000 ", RGB{}, false},
		{"#fff", RGB{}, true},
		{"#zzzzzz", RGB{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !closeRGB(got, tt.want) {
			t.Errorf("ParseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := DefaultFlakeColor.Hex(); got != "#014298" {
		t.Errorf("Hex = %s", got)
	}
	if got := (RGB{R: 3, G: -1, B: 0.5}).Hex(); got != "#ff0080" {
		t.Errorf("Hex = %s", got)
	}
}

func TestFromColor(t *testing.T) {
	got := FromColor(color.NRGBA{R: 1, G: 66, B: 152, A: 255})
	if !closeRGB(got, DefaultFlakeColor) {
		t.Fatalf("FromColor = %+v", got)
	}
	if c := got.Color(); c != (color.NRGBA{R: 1, G: 66, B: 152, A: 255}) {
		t.Fatalf("Color = %+v", c)
	}
}

func TestRGBANRGBA(t *testing.T) {
	c := RGBA{R: 1, G: 0.5, B: -2, A: math.NaN()}.NRGBA()
	if c != (color.NRGBA{R: 255, G: 128, B: 0, A: 0}) {
		t.Fatalf("NRGBA = %+v", c)
	}
}

func closeRGB(a, b RGB) bool {
	return math.Abs(a.R-b.R) < 1e-9 && math.Abs(a.G-b.G) < 1e-9 && math.Abs(a.B-b.B) < 1e-9
}
