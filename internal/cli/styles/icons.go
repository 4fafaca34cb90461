package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconVersion   = "" //  tag
	IconGitBranch = "" //  git branch
	IconCalendar  = "" //  calendar
	IconGithub    = "" //  github
	IconHeart     = "" //  heart
	IconGo        = "" //  go gopher

	// Doctor / diagnostics
	IconDoctor  = "" // stethoscope
	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconPackage = "" // archive/package
	IconVideo   = "" // video camera

	// History
	IconPlay  = "" // play
	IconClock = "" // clock
	IconTrash = "" // trash

	// UI
	IconCursor = "" // chevron-right
)

const (
	cursorSelected = IconCursor + " "
	cursorEmpty    = "  "
)
