package zle

import _ "embed"

// WidgetScript is the zsh integration sourced by `llmsuggest init zsh`.
//
//go:embed llmsuggest.zsh
var WidgetScript string
