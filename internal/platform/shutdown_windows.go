//go:build windows

package platform

import "os"

// console apps on Windows do not reliably receive SIGTERM
var shutdownSignals = []os.Signal{os.Interrupt}
