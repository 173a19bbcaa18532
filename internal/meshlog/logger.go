// Package meshlog is the structured logging wrapper shared by the
// transport package and the two commands.
package meshlog

/*------------------------------------------------------------------
 *
 * Purpose:	Per-node structured logging: one charmbracelet/log
 *		logger per node, with node id and role attached to every
 *		line so interleaved output from several nodes stays
 *		attributable.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is a per-node logger carrying the node's identity as a
// standing field so callers never need to repeat it.
type Logger struct {
	*log.Logger
}

// New builds a Logger writing to w (os.Stderr in production, a
// bytes.Buffer in tests) with id and role attached to every line.
func New(w io.Writer, nodeID uint32, role string) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
		Level:           log.InfoLevel,
		Prefix:          "netcoding",
		TimeFormat:      "",
		Formatter:       log.TextFormatter,
	})
	return &Logger{Logger: l.With("node", nodeID, "role", role)}
}

// Default builds a Logger writing to stderr, the common case for
// cmd/netcoding-node and cmd/netcoding-sim.
func Default(nodeID uint32, role string) *Logger {
	return New(os.Stderr, nodeID, role)
}

// WithHeader returns a derived logger that also carries a packet
// header field, for the common "logging what we just encoded/decoded"
// call site.
func (l *Logger) WithHeader(header fmt.Stringer) *Logger {
	return &Logger{Logger: l.Logger.With("header", header.String())}
}
