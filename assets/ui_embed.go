package assets

import _ "embed"

// Player window layout embedded at compile time

//go:embed ui/player.ui
var PlayerUI string
