package tree

// Icon names a presentation glyph; the UI theme maps it to a character and colour.
type Icon string

const (
	IconError   Icon = "error"
	IconWarning Icon = "warning"
	IconNote    Icon = "note"
	IconFile    Icon = "file"
	IconDefault Icon = "default"
)

// IconFor maps a severity level (or "file") to its icon.
// Every case is listed; unknown names get IconDefault.
func IconFor(name string) Icon {
	switch name {
	case "error":
		return IconError
	case "warning":
		return IconWarning
	case "note":
		return IconNote
	case "file":
		return IconFile
	default:
		return IconDefault
	}
}
