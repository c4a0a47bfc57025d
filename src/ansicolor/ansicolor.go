package ansicolor

import (
	"os"
	"runtime"
)

// Escape codes for the dev log writer. Cleared when the terminal can't show them.

var Reset = "\033[0m"
var Bold = "\033[1m"
var Faint = "\033[2m"
var Italic = "\033[3m"
var Underline = "\033[4m"

var Red = "\033[31m"
var Green = "\033[32m"
var Yellow = "\033[33m"
var Blue = "\033[34m"
var Purple = "\033[35m"
var Cyan = "\033[36m"
var Gray = "\033[37m"

var BgRed = "\033[41m"
var BgGreen = "\033[42m"
var BgYellow = "\033[43m"
var BgBlue = "\033[44m"

func init() {
	if runtime.GOOS == "windows" || os.Getenv("NO_COLOR") != "" {
		Disable()
	}
}

// Turns every code into an empty string.
func Disable() {
	for _, code := range []*string{
		&Reset, &Bold, &Faint, &Italic, &Underline,
		&Red, &Green, &Yellow, &Blue, &Purple, &Cyan, &Gray,
		&BgRed, &BgGreen, &BgYellow, &BgBlue,
	} {
		*code = ""
	}
}
