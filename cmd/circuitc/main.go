package main

import (
	"os"

	"github.com/l7mp/dbsp-sql/internal/buildinfo"
	"github.com/l7mp/dbsp-sql/internal/cli"
)

// version, commitHash and buildDate are overridden at link time via -ldflags, the same convention
// the dcontroller binary uses for its own build stamping.
var (
	version    = "dev"
	commitHash = "n/a"
	buildDate  = "<unknown>"
)

func main() {
	info := buildinfo.BuildInfo{Version: version, CommitHash: commitHash, BuildDate: buildDate}
	os.Exit(cli.Execute(info))
}
