package mouse

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Button.left", "left"},
		{"Button.RIGHT", "right"},
		{" middle ", "middle"},
		{"Button.x1", "x1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Canonical(tt.raw); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  Button
	}{
		{"left", ButtonLeft},
		{"Button.left", ButtonLeft},
		{"right", ButtonRight},
		{"button_right", ButtonRight},
		{"middle", ButtonMiddle},
		{"x1", ButtonNone},
		{"", ButtonNone},
	}
	for _, tt := range tests {
		if got := Classify(tt.token); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestButtonString(t *testing.T) {
	for b, want := range map[Button]string{
		ButtonLeft:   "left",
		ButtonRight:  "right",
		ButtonMiddle: "middle",
		ButtonNone:   "none",
		Button(42):   "none",
	} {
		if got := b.String(); got != want {
			t.Errorf("Button(%d).String() = %q, want %q", b, got, want)
		}
	}
}

func TestPosition(t *testing.T) {
	a := Position{X: 10, Y: 20}
	b := Position{X: 4, Y: 25}
	if got := a.Sub(b); got != (Position{X: 6, Y: -5}) {
		t.Errorf("Sub = %+v, want {6 -5}", got)
	}
	if !a.Equal(Position{X: 10, Y: 20}) || a.Equal(b) {
		t.Error("Equal mismatch")
	}
}
