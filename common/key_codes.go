package common

// Key codes delivered by window key callbacks. Values follow GLFW, which uses
// ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key

// Digit row, ASCII '0' through '9'.
const (
	Key0 = 48 + iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
)

// Letter keys, ASCII 'A' through 'Z'.
const (
	KeyA = 65 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

// Non-printable keys, GLFW function key range.
const (
	KeySpace      = 32
	KeyEsc        = 256
	KeyEnter      = 257
	KeyTab        = 258
	KeyBackspace  = 259
	KeyRight      = 262
	KeyLeft       = 263
	KeyDown       = 264
	KeyUp         = 265
	KeyLeftShift  = 340
	KeyLeftCtrl   = 341
	KeyRightShift = 344
	KeyRightCtrl  = 345
)
