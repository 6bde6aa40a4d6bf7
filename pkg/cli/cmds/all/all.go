// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/tempair.go/pkg/cli/cmds/eep"
	_ "github.com/robotalks/tempair.go/pkg/cli/cmds/esp3"
)
