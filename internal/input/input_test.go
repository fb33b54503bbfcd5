package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyDown_Chord(t *testing.T) {
	tests := []struct {
		name string
		key  KeyDown
		want string
	}{
		{name: "plain", key: KeyDown{Key: "delete"}, want: "delete"},
		{name: "ctrl", key: KeyDown{Key: "a", Modifiers: Modifiers{Ctrl: true}}, want: "ctrl+a"},
		{name: "all", key: KeyDown{Key: "z", Modifiers: Modifiers{Ctrl: true, Alt: true, Shift: true}}, want: "ctrl+alt+shift+z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.key.Chord())
		})
	}
}
