package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Tests log everything, in the same JSON shape the library emits, but only
// when run with -v.
func init() {
	logger := logrus.StandardLogger()
	logger.SetLevel(logrus.TraceLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if !isVerbose(os.Args) {
		logger.SetOutput(io.Discard)
	}
}

func isVerbose(args []string) bool {
	for _, arg := range args {
		switch strings.TrimLeft(arg, "-") {
		case "test.v", "test.v=true", "v", "v=true":
			return true
		}
	}
	return false
}
