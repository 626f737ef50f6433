// Package changes implements the Changes wire shape exchanged between the
// core and clients.
package changes

import (
	"github.com/google/uuid"
	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/value"
)

// AddedSnapshot is a fully-formed subtree addition: {id, parent, name,
// class, properties, children, meta}.
type AddedSnapshot struct {
	ID         uuid.UUID       `json:"id"`
	Parent     uuid.UUID       `json:"parent"`
	Name       string          `json:"name"`
	Class      string          `json:"class"`
	Properties map[string]value.Value `json:"properties"`
	Children   []AddedSnapshot `json:"children"`
	Meta       meta.Meta       `json:"meta"`
}

// UpdatedSnapshot carries only the fields that changed: {id, name?,
// class?, properties?, meta?}. A nil pointer/map means "unchanged".
type UpdatedSnapshot struct {
	ID         uuid.UUID                `json:"id"`
	Name       *string                  `json:"name,omitempty"`
	Class      *string                  `json:"class,omitempty"`
	Properties map[string]value.Value   `json:"properties,omitempty"`
	Meta       *meta.Meta               `json:"meta,omitempty"`
}

// IsEmpty reports an UpdatedSnapshot with no changed field, which the
// processor suppresses before enqueuing.
func (u UpdatedSnapshot) IsEmpty() bool {
	return u.Name == nil && u.Class == nil && len(u.Properties) == 0 && u.Meta == nil
}

// Changes is the changeset shape carried in both directions: {additions,
// updates, removals}.
type Changes struct {
	Additions []AddedSnapshot   `json:"additions"`
	Updates   []UpdatedSnapshot `json:"updates"`
	Removals  []uuid.UUID       `json:"removals"`
}

// Empty returns a Changes with all three fields initialized to empty
// slices (not nil), so JSON encodes `[]` rather than `null`.
func Empty() Changes {
	return Changes{
		Additions: []AddedSnapshot{},
		Updates:   []UpdatedSnapshot{},
		Removals:  []uuid.UUID{},
	}
}

func (c *Changes) AddAddition(s AddedSnapshot)   { c.Additions = append(c.Additions, s) }
func (c *Changes) AddUpdate(u UpdatedSnapshot)   { c.Updates = append(c.Updates, u) }
func (c *Changes) AddRemoval(id uuid.UUID)        { c.Removals = append(c.Removals, id) }

// IsEmpty reports whether the change set carries nothing. The queue wakes
// blocked readers with an empty change set on timeout or cancellation.
func (c Changes) IsEmpty() bool {
	return len(c.Additions) == 0 && len(c.Updates) == 0 && len(c.Removals) == 0
}

// Len is the total number of individual changes, used against the
// confirmation threshold.
func (c Changes) Len() int {
	return len(c.Additions) + len(c.Updates) + len(c.Removals)
}

func (c *Changes) Extend(other Changes) {
	c.Additions = append(c.Additions, other.Additions...)
	c.Updates = append(c.Updates, other.Updates...)
	c.Removals = append(c.Removals, other.Removals...)
}

// Details is the SyncDetails wire shape: project name, optional gameId,
// list of placeIds, engine/protocol version.
type Details struct {
	Name            string  `json:"name"`
	GameID          *int64  `json:"gameId,omitempty"`
	PlaceIDs        []int64 `json:"placeIds"`
	ProtocolVersion int     `json:"protocolVersion"`
}

// Execute is the opaque payload forwarded to clients, never executed by
// the core.
type Execute struct {
	Code string `json:"code"`
}
