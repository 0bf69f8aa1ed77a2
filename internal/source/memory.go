package source

import (
	"context"
	"fmt"
)

// MemorySource serves frames held in memory. Read projects the requested
// columns so callers see the same behaviour as a file source.
type MemorySource struct {
	frames map[Table]*Frame
}

func NewMemorySource(frames ...*Frame) *MemorySource {
	m := &MemorySource{frames: make(map[Table]*Frame, len(frames))}
	for _, f := range frames {
		m.frames[f.Table] = f
	}
	return m
}

// Read implements dependency.TableSource.
func (m *MemorySource) Read(ctx context.Context, table Table, columns []string) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := m.frames[table]
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	out := NewFrame(table)
	for _, name := range columns {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
