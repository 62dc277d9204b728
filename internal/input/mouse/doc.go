// Package mouse provides mouse button tokens and screen positions shared by
// the recorder, the player and the device backends.
//
// Buttons are stored in recordings as canonical lowercase tokens ("left",
// "right", "x1") so that recordings made by any capture backend compare
// equal. Classify maps a token back to a Button for injection:
//
//	b := mouse.Classify(mouse.Canonical("Button.left")) // mouse.ButtonLeft
package mouse
