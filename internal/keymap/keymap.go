// Package keymap translates abstract remote buttons into vendor wire tokens.
//
// The tables in this package are the single source of truth for the key
// names each TV protocol expects. Real devices match these strings exactly,
// so they must not be reformatted.
package keymap

import (
	"github.com/muurk/tvremote/internal/device"
)

// NoMapping is returned for buttons a vendor cannot represent
const NoMapping = ""

var rokuKeys = map[device.Button]string{
	device.ButtonUp:          "Up",
	device.ButtonDown:        "Down",
	device.ButtonLeft:        "Left",
	device.ButtonRight:       "Right",
	device.ButtonSelect:      "Select",
	device.ButtonPower:       "Power",
	device.ButtonHome:        "Home",
	device.ButtonMenu:        "Info",
	device.ButtonBack:        "Back",
	device.ButtonVolumeUp:    "VolumeUp",
	device.ButtonVolumeDown:  "VolumeDown",
	device.ButtonMute:        "VolumeMute",
	device.ButtonChannelUp:   "ChannelUp",
	device.ButtonChannelDown: "ChannelDown",
	// ECP has a single play/pause toggle and no stop key
	device.ButtonPlay:        "Play",
	device.ButtonPause:       "Play",
	device.ButtonStop:        "Back",
	device.ButtonRewind:      "Rev",
	device.ButtonFastForward: "Fwd",
	device.ButtonDigit0:      "Lit_0",
	device.ButtonDigit1:      "Lit_1",
	device.ButtonDigit2:      "Lit_2",
	device.ButtonDigit3:      "Lit_3",
	device.ButtonDigit4:      "Lit_4",
	device.ButtonDigit5:      "Lit_5",
	device.ButtonDigit6:      "Lit_6",
	device.ButtonDigit7:      "Lit_7",
	device.ButtonDigit8:      "Lit_8",
	device.ButtonDigit9:      "Lit_9",
}

var samsungKeys = map[device.Button]string{
	device.ButtonUp:          "KEY_UP",
	device.ButtonDown:        "KEY_DOWN",
	device.ButtonLeft:        "KEY_LEFT",
	device.ButtonRight:       "KEY_RIGHT",
	device.ButtonSelect:      "KEY_ENTER",
	device.ButtonPower:       "KEY_POWER",
	device.ButtonHome:        "KEY_HOME",
	device.ButtonMenu:        "KEY_MENU",
	device.ButtonBack:        "KEY_RETURN",
	device.ButtonVolumeUp:    "KEY_VOLUP",
	device.ButtonVolumeDown:  "KEY_VOLDOWN",
	device.ButtonMute:        "KEY_MUTE",
	device.ButtonChannelUp:   "KEY_CHUP",
	device.ButtonChannelDown: "KEY_CHDOWN",
	device.ButtonPlay:        "KEY_PLAY",
	device.ButtonPause:       "KEY_PAUSE",
	device.ButtonStop:        "KEY_STOP",
	device.ButtonRewind:      "KEY_REWIND",
	device.ButtonFastForward: "KEY_FF",
	device.ButtonDigit0:      "KEY_0",
	device.ButtonDigit1:      "KEY_1",
	device.ButtonDigit2:      "KEY_2",
	device.ButtonDigit3:      "KEY_3",
	device.ButtonDigit4:      "KEY_4",
	device.ButtonDigit5:      "KEY_5",
	device.ButtonDigit6:      "KEY_6",
	device.ButtonDigit7:      "KEY_7",
	device.ButtonDigit8:      "KEY_8",
	device.ButtonDigit9:      "KEY_9",
}

var lgKeys = map[device.Button]string{
	device.ButtonUp:          "UP",
	device.ButtonDown:        "DOWN",
	device.ButtonLeft:        "LEFT",
	device.ButtonRight:       "RIGHT",
	device.ButtonSelect:      "ENTER",
	device.ButtonPower:       "POWER",
	device.ButtonHome:        "HOME",
	device.ButtonMenu:        "MENU",
	device.ButtonBack:        "BACK",
	device.ButtonVolumeUp:    "VOLUMEUP",
	device.ButtonVolumeDown:  "VOLUMEDOWN",
	device.ButtonMute:        "MUTE",
	device.ButtonChannelUp:   "CHANNELUP",
	device.ButtonChannelDown: "CHANNELDOWN",
	device.ButtonPlay:        "PLAY",
	device.ButtonPause:       "PAUSE",
	device.ButtonStop:        "STOP",
	device.ButtonRewind:      "REWIND",
	device.ButtonFastForward: "FASTFORWARD",
	device.ButtonDigit0:      "0",
	device.ButtonDigit1:      "1",
	device.ButtonDigit2:      "2",
	device.ButtonDigit3:      "3",
	device.ButtonDigit4:      "4",
	device.ButtonDigit5:      "5",
	device.ButtonDigit6:      "6",
	device.ButtonDigit7:      "7",
	device.ButtonDigit8:      "8",
	device.ButtonDigit9:      "9",
}

// appleTVKeys has no number pad entries; digits fall back to their glyph.
var appleTVKeys = map[device.Button]string{
	device.ButtonUp:          "up",
	device.ButtonDown:        "down",
	device.ButtonLeft:        "left",
	device.ButtonRight:       "right",
	device.ButtonSelect:      "select",
	device.ButtonPower:       "sleep",
	device.ButtonHome:        "topmenu",
	device.ButtonMenu:        "menu",
	device.ButtonBack:        "back",
	device.ButtonVolumeUp:    "volumeup",
	device.ButtonVolumeDown:  "volumedown",
	device.ButtonMute:        "mutetoggle",
	device.ButtonChannelUp:   "nextitem",
	device.ButtonChannelDown: "previtem",
	device.ButtonPlay:        "play",
	device.ButtonPause:       "pause",
	device.ButtonStop:        "stop",
	device.ButtonRewind:      "beginrew",
	device.ButtonFastForward: "beginff",
}

var tables = map[device.Vendor]map[device.Button]string{
	device.VendorRoku:    rokuKeys,
	device.VendorSamsung: samsungKeys,
	device.VendorLG:      lgKeys,
	device.VendorAppleTV: appleTVKeys,
}

// Command returns the token vendor expects for button.
//
// Every (button, vendor) pair has a result: digits on a vendor without a
// number pad fall back to the digit glyph, and anything else without an
// equivalent, including every button for VendorUnknown, yields NoMapping.
func Command(button device.Button, vendor device.Vendor) string {
	table, ok := tables[vendor]
	if !ok {
		return NoMapping
	}
	if token, ok := table[button]; ok {
		return token
	}
	if _, isDigit := button.Digit(); isDigit {
		return button.Glyph()
	}
	return NoMapping
}

// Table returns a copy of the resolved token table for vendor, covering
// every button in device.Buttons.
func Table(vendor device.Vendor) map[device.Button]string {
	out := make(map[device.Button]string, len(device.Buttons))
	for _, b := range device.Buttons {
		out[b] = Command(b, vendor)
	}
	return out
}
