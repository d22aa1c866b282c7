package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/ChainSafe/forest-explorer/query"
)

const (
	loaderMark = "..."
	noValue    = "-"
)

// Line formats one query row, e.g. "StateNetworkName: calibrationnet".
func Line(name string, f query.Facets) string {
	v := noValue
	if f.Value != nil {
		v = fmt.Sprint(f.Value)
	}
	switch {
	case f.Loading:
		return fmt.Sprintf("%s: %s %s", name, v, loaderMark)
	case f.Failed:
		return fmt.Sprintf("%s: %s (unavailable)", name, v)
	default:
		return fmt.Sprintf("%s: %s", name, v)
	}
}

// Console writes a line to w every time a query's visible row changes.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	last map[string]string
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, last: make(map[string]string)}
}

func (c *Console) Render(name string, f query.Facets) {
	line := Line(name, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last[name] == line {
		return
	}
	c.last[name] = line
	fmt.Fprintln(c.w, line)
}
