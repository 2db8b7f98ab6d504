package version

import (
	"fmt"
	"log"
	"strings"
)

var (
	Name        = "relaypool"
	Description = "Upstream relay health & selection engine"
	Version     = "v0.1.0"
	Commit      = "none"
	Date        = "nowish"
)

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s - %s", Name, Version, Description))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
	}

	vlog.Println(b.String())
}
