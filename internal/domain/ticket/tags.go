package ticket

import (
	"strings"
	"time"

	"github.com/pos/backend/internal/domain/shared"
)

const (
	tagSeparator = "\r"
	tagPair      = ":"
)

// TagValue is a named value attached to a ticket. UpdatedAt is kept in
// memory only and is zero for decoded values.
type TagValue struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// TagStore keeps tag values in insertion order
type TagStore struct {
	values []TagValue
}

// DecodeTags parses "name:value\rname:value". The name ends at the first
// colon so values may contain colons. A segment without a colon, with an
// empty name or value, or with a repeated name yields an empty store.
func DecodeTags(data string) *TagStore {
	store := &TagStore{}
	for _, segment := range strings.Split(data, tagSeparator) {
		if segment == "" {
			continue
		}
		name, value, ok := strings.Cut(segment, tagPair)
		if !ok || name == "" || value == "" || store.index(name) >= 0 {
			return &TagStore{}
		}
		store.values = append(store.values, TagValue{Name: name, Value: value})
	}
	return store
}

// Encode renders the store in its persisted form
func (s *TagStore) Encode() string {
	parts := make([]string, 0, len(s.values))
	for _, v := range s.values {
		parts = append(parts, v.Name+tagPair+v.Value)
	}
	return strings.Join(parts, tagSeparator)
}

// Display renders non-empty values as "name: value" lines
func (s *TagStore) Display() string {
	parts := make([]string, 0, len(s.values))
	for _, v := range s.values {
		if v.Value == "" {
			continue
		}
		parts = append(parts, v.Name+": "+v.Value)
	}
	return strings.Join(parts, tagSeparator)
}

// Get returns the value for name, or "" when absent
func (s *TagStore) Get(name string) string {
	if i := s.index(name); i >= 0 {
		return s.values[i].Value
	}
	return ""
}

// Set stores value under name. An empty value removes the tag.
func (s *TagStore) Set(name, value string, now time.Time) error {
	if name == "" || strings.ContainsAny(name, tagPair+tagSeparator) {
		return shared.NewDomainError("INVALID_TAG_NAME", "Tag name cannot be empty or contain ':' or line breaks")
	}
	if strings.Contains(value, tagSeparator) {
		return shared.NewDomainError("INVALID_TAG_VALUE", "Tag value cannot contain line breaks")
	}

	i := s.index(name)
	switch {
	case value == "" && i >= 0:
		s.values = append(s.values[:i], s.values[i+1:]...)
	case value == "":
	case i >= 0:
		s.values[i].Value = value
		s.values[i].UpdatedAt = now
	default:
		s.values = append(s.values, TagValue{Name: name, Value: value, UpdatedAt: now})
	}
	return nil
}

// Values returns a copy of the stored values
func (s *TagStore) Values() []TagValue {
	return append([]TagValue(nil), s.values...)
}

// Len returns the number of stored tags
func (s *TagStore) Len() int {
	return len(s.values)
}

func (s *TagStore) index(name string) int {
	for i, v := range s.values {
		if v.Name == name {
			return i
		}
	}
	return -1
}
