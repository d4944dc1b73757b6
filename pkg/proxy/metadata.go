package proxy

import (
	"encoding/json"
	"sync/atomic"
)

// ReferenceMetadata holds the reference service metadata fetched during
// initialization. It is written once and read by the /start handler.
type ReferenceMetadata struct {
	raw atomic.Pointer[[]byte]
}

// Set stores the raw metadata body.
func (m *ReferenceMetadata) Set(raw []byte) {
	data := append([]byte(nil), raw...)
	m.raw.Store(&data)
}

// Available reports whether metadata was fetched.
func (m *ReferenceMetadata) Available() bool {
	return m != nil && m.raw.Load() != nil
}

// Raw returns the stored body, or nil.
func (m *ReferenceMetadata) Raw() []byte {
	if m == nil {
		return nil
	}
	if p := m.raw.Load(); p != nil {
		return *p
	}
	return nil
}

// Fields decodes the stored body as a JSON object. Metadata that is not a
// JSON object yields nil; the raw body is still available.
func (m *ReferenceMetadata) Fields() map[string]any {
	raw := m.Raw()
	if raw == nil {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}
