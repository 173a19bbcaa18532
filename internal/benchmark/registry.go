// Package benchmark is the CSV arrival registry: a durable,
// append-only log of packet arrivals used by external measurement
// tooling, not by the coding engine itself.
package benchmark

/*------------------------------------------------------------------
 *
 * Purpose:	Create a CSV registry file with a header line, then
 *		append one line per observed packet arrival.
 *
 * Description:	The header-line create is the one write an operator
 *		starting several simulated nodes at once could otherwise
 *		race on, so it goes through a single atomic rename
 *		(github.com/natefinch/atomic) rather than a plain
 *		truncate-and-write. Appends afterward are plain O_APPEND
 *		writes guarded by a mutex, the same shape as mheard.go's
 *		mheard_mutex guarding a map "updated from two different
 *		threads."
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// HeaderLine is the CSV header line existing tooling expects.
const HeaderLine = "Tempo, NodeID, MsgID\n"

// Registry is a single CSV file that one or more simulated nodes
// append arrival records to.
type Registry struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// Create makes a new registry file at path, overwriting any existing
// content, and writes the header line.
func Create(path string) (*Registry, error) {
	if err := atomic.WriteFile(path, strings.NewReader(HeaderLine)); err != nil {
		return nil, fmt.Errorf("benchmark: creating registry %q: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("benchmark: opening registry %q: %w", path, err)
	}

	return &Registry{path: path, file: f}, nil
}

// Close releases the registry's open file handle.
func (r *Registry) Close() error {
	return r.file.Close()
}

// Record appends one arrival line: "<seconds>.<ms>,<nodeID>,<msgID>\n",
// matching create_received_registry's historic format.
func (r *Registry) Record(at time.Time, nodeID, msgID uint32) error {
	line := fmt.Sprintf("%d.%03d,%d,%d\n", at.Unix(), at.Nanosecond()/1_000_000, nodeID, msgID)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.file.WriteString(line)
	if err != nil {
		return fmt.Errorf("benchmark: appending to %q: %w", r.path, err)
	}
	return nil
}
