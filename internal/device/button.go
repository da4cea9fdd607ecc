package device

import (
	"fmt"
	"strings"
)

// Button is an abstract remote-control button
type Button string

const (
	ButtonUp     Button = "up"
	ButtonDown   Button = "down"
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonSelect Button = "select"

	ButtonPower Button = "power"
	ButtonHome  Button = "home"
	ButtonMenu  Button = "menu"
	ButtonBack  Button = "back"

	ButtonVolumeUp   Button = "volumeUp"
	ButtonVolumeDown Button = "volumeDown"
	ButtonMute       Button = "mute"

	ButtonChannelUp   Button = "channelUp"
	ButtonChannelDown Button = "channelDown"

	ButtonPlay        Button = "play"
	ButtonPause       Button = "pause"
	ButtonStop        Button = "stop"
	ButtonRewind      Button = "rewind"
	ButtonFastForward Button = "fastForward"

	ButtonDigit0 Button = "digit0"
	ButtonDigit1 Button = "digit1"
	ButtonDigit2 Button = "digit2"
	ButtonDigit3 Button = "digit3"
	ButtonDigit4 Button = "digit4"
	ButtonDigit5 Button = "digit5"
	ButtonDigit6 Button = "digit6"
	ButtonDigit7 Button = "digit7"
	ButtonDigit8 Button = "digit8"
	ButtonDigit9 Button = "digit9"
)

// Buttons lists every button in remote layout order
var Buttons = []Button{
	ButtonUp, ButtonDown, ButtonLeft, ButtonRight, ButtonSelect,
	ButtonPower, ButtonHome, ButtonMenu, ButtonBack,
	ButtonVolumeUp, ButtonVolumeDown, ButtonMute,
	ButtonChannelUp, ButtonChannelDown,
	ButtonPlay, ButtonPause, ButtonStop, ButtonRewind, ButtonFastForward,
	ButtonDigit0, ButtonDigit1, ButtonDigit2, ButtonDigit3, ButtonDigit4,
	ButtonDigit5, ButtonDigit6, ButtonDigit7, ButtonDigit8, ButtonDigit9,
}

// DigitButton returns the button for digit n (0-9)
func DigitButton(n int) (Button, bool) {
	if n < 0 || n > 9 {
		return "", false
	}
	return Button(fmt.Sprintf("digit%d", n)), true
}

// Digit returns the digit a number-pad button represents
func (b Button) Digit() (int, bool) {
	if !strings.HasPrefix(string(b), "digit") || len(b) != len("digit")+1 {
		return 0, false
	}
	c := b[len(b)-1]
	if c < '0' || c > '9' {
		return 0, false
	}
	return int(c - '0'), true
}

// Glyph returns the label printed on the physical button
func (b Button) Glyph() string {
	if n, ok := b.Digit(); ok {
		return fmt.Sprintf("%d", n)
	}
	switch b {
	case ButtonUp:
		return "▲"
	case ButtonDown:
		return "▼"
	case ButtonLeft:
		return "◀"
	case ButtonRight:
		return "▶"
	case ButtonSelect:
		return "OK"
	case ButtonPower:
		return "⏻"
	case ButtonVolumeUp:
		return "VOL+"
	case ButtonVolumeDown:
		return "VOL-"
	case ButtonChannelUp:
		return "CH+"
	case ButtonChannelDown:
		return "CH-"
	case ButtonPlay:
		return "▶"
	case ButtonPause:
		return "⏸"
	case ButtonStop:
		return "■"
	case ButtonRewind:
		return "⏪"
	case ButtonFastForward:
		return "⏩"
	default:
		return strings.ToUpper(string(b))
	}
}

// Valid reports whether b is one of the enumerated buttons
func (b Button) Valid() bool {
	for _, known := range Buttons {
		if b == known {
			return true
		}
	}
	return false
}

// ParseButton converts user input into a Button. Names are matched
// case-insensitively, and bare digits ("7") select the digit buttons.
func ParseButton(s string) (Button, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		b, _ := DigitButton(int(s[0] - '0'))
		return b, nil
	}

	switch strings.ToLower(s) {
	case "vol+":
		return ButtonVolumeUp, nil
	case "vol-":
		return ButtonVolumeDown, nil
	case "ch+":
		return ButtonChannelUp, nil
	case "ch-":
		return ButtonChannelDown, nil
	}

	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for _, b := range Buttons {
		if strings.ToLower(string(b)) == normalized {
			return b, nil
		}
	}

	switch normalized {
	case "ok", "enter":
		return ButtonSelect, nil
	case "volup":
		return ButtonVolumeUp, nil
	case "voldown":
		return ButtonVolumeDown, nil
	case "chup":
		return ButtonChannelUp, nil
	case "chdown":
		return ButtonChannelDown, nil
	case "ff", "forward":
		return ButtonFastForward, nil
	case "rew":
		return ButtonRewind, nil
	}

	return "", fmt.Errorf("unknown button %q", s)
}

// Category groups buttons by how much feedback a press should produce
type Category string

const (
	CategoryHeavy     Category = "heavy"
	CategoryMedium    Category = "medium"
	CategorySelection Category = "selection"
	CategoryLight     Category = "light"
)

// Category returns the feedback category for the button:
// power is heavy; select, home and menu are medium; volume and channel
// buttons are selection; everything else is light.
func (b Button) Category() Category {
	switch b {
	case ButtonPower:
		return CategoryHeavy
	case ButtonSelect, ButtonHome, ButtonMenu:
		return CategoryMedium
	case ButtonVolumeUp, ButtonVolumeDown, ButtonMute, ButtonChannelUp, ButtonChannelDown:
		return CategorySelection
	default:
		return CategoryLight
	}
}
