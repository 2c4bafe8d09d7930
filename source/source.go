// Package source defines the remote resource a video is reconstructed from and the target a user asks for.
package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidResource is returned when a resource cannot address any segment.
var ErrInvalidResource = errors.New("invalid resource")

// Resource identifies a segmented video on the origin.
// Segment id i lives at BaseURL + i + Extension.
type Resource struct {
	// BaseURL is the rendered URL prefix every segment id is appended to.
	BaseURL string `json:"base_url"`
	// StartID is the id of the first segment. Origins publish either 0 or 1.
	StartID int `json:"start_id"`
	// Extension is the segment file extension, including the dot.
	Extension string `json:"extension"`
}

// NewResource validates and returns a resource.
func NewResource(baseURL string, startID int, extension string) (Resource, error) {
	if strings.TrimSpace(baseURL) == "" {
		return Resource{}, fmt.Errorf("%w: empty base url", ErrInvalidResource)
	}

	if startID < 0 {
		return Resource{}, fmt.Errorf("%w: negative start id %d", ErrInvalidResource, startID)
	}

	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	return Resource{BaseURL: baseURL, StartID: startID, Extension: extension}, nil
}

// URL returns the address of the segment with the given id.
func (r Resource) URL(id int) string {
	return r.BaseURL + strconv.Itoa(id) + r.Extension
}

// ID maps a 1-based ordinal to a segment id.
func (r Resource) ID(ordinal int) int {
	return r.StartID + ordinal - 1
}

// Ordinal is the inverse of ID.
func (r Resource) Ordinal(id int) int {
	return id - r.StartID + 1
}

// IDs returns the ids of the first count segments in ascending order.
func (r Resource) IDs(count int) []int {
	if count <= 0 {
		return nil
	}

	ids := make([]int, count)
	for i := range ids {
		ids[i] = r.StartID + i
	}
	return ids
}

// String returns a readable representation of the segment range pattern.
func (r Resource) String() string {
	return fmt.Sprintf("%s{id}%s (from %d)", r.BaseURL, r.Extension, r.StartID)
}
