package switchboard

import _ "embed"

// Version is the release of the router, read from the VERSION file.
//
//go:embed VERSION
var Version string
