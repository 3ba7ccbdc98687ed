/*
registry.go - Stream descriptor registration and lookup

PURPOSE:
  Provides a registry for domain packages to register the funding streams
  they define. Course records and configuration files name streams by
  string; the registry turns those strings back into known stream ids and
  rejects anything no domain has declared.

HOW IT WORKS:
  1. Domain packages declare StreamID constants
  2. Domain packages register descriptors in init()
  3. Factory/storage uses the registry to validate ids read from JSON

USAGE:
  // In funding/types.go
  func init() {
      generic.RegisterStream(generic.StreamDescriptor{ID: Stream16To19, Title: "16-19 Education Funding", Domain: "funding"})
  }

  // In factory
  id, err := generic.ParseStreamID("16-19")

SEE ALSO:
  - types.go: StreamID definition
  - funding/types.go: Funding stream registration
*/
package generic

import (
	"fmt"
	"sync"
)

// =============================================================================
// STREAM REGISTRY
// =============================================================================

// StreamDescriptor describes a registered stream.
type StreamDescriptor struct {
	ID     StreamID `json:"id"`
	Title  string   `json:"title"`
	Domain string   `json:"domain"`
}

var (
	streamRegistry = make(map[StreamID]StreamDescriptor)
	streamOrder    []StreamID
	registryMu     sync.RWMutex
)

// RegisterStream adds a descriptor to the global registry.
// Re-registering an id replaces the descriptor but keeps its position.
func RegisterStream(d StreamDescriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := streamRegistry[d.ID]; !exists {
		streamOrder = append(streamOrder, d.ID)
	}
	streamRegistry[d.ID] = d
}

// LookupStream finds a registered descriptor by id.
func LookupStream(id StreamID) (StreamDescriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := streamRegistry[id]
	return d, ok
}

// ParseStreamID validates a stream id read from external input.
func ParseStreamID(s string) (StreamID, error) {
	id := StreamID(s)
	if _, ok := LookupStream(id); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStream, s)
	}
	return id, nil
}

// ListStreams returns descriptors in registration order.
func ListStreams() []StreamDescriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]StreamDescriptor, 0, len(streamOrder))
	for _, id := range streamOrder {
		out = append(out, streamRegistry[id])
	}
	return out
}

// ListStreamsByDomain returns descriptors for a specific domain.
func ListStreamsByDomain(domain string) []StreamDescriptor {
	var out []StreamDescriptor
	for _, d := range ListStreams() {
		if d.Domain == domain {
			out = append(out, d)
		}
	}
	return out
}
