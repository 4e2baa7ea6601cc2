package logging

import (
	"io"
	"os"
)

// stderr is swapped in tests to capture output.
var stderr io.Writer = os.Stderr
