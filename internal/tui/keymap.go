package tui

// Key binding constants used in handleKey.
const (
	keyQuit      = "q"
	keyQuitUpper = "Q"
	keyCtrlC     = "ctrl+c"

	keySummarize = "s"
	keyTranslate = "t"
	keyAsk       = "a"
	keyLanguage  = "l"

	keyPrimary   = "1"
	keySecondary = "2"
	keyStopAll   = "0"

	keyLogin    = "g"
	keyRegister = "r"
	keyLogout   = "x"
	keyRefresh  = "R"

	keyTab   = "tab"
	keyUp    = "up"
	keyDown  = "down"
	keyJ     = "j"
	keyK     = "k"
	keyEnter = "enter"
	keyEsc   = "esc"
)
