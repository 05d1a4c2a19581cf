package analyzer

import (
	"fmt"
	"strings"
)

// JoinKind is the flavor of a JOIN clause.
type JoinKind int

// Join kinds.
const (
	JoinLeft JoinKind = iota + 1
	JoinRight
	JoinInner
	JoinFullOuter
)

var joinKindNames = map[JoinKind]string{
	JoinLeft:      "LEFT",
	JoinRight:     "RIGHT",
	JoinInner:     "INNER",
	JoinFullOuter: "FULL_OUTER",
}

func (k JoinKind) String() string {
	if name, ok := joinKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseJoinKind converts a name such as "LEFT" or "full_outer" to a JoinKind.
func ParseJoinKind(s string) (JoinKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range joinKindNames {
		if name == upper {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown join kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k JoinKind) MarshalText() ([]byte, error) {
	if _, ok := joinKindNames[k]; !ok {
		return nil, fmt.Errorf("invalid join kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *JoinKind) UnmarshalText(text []byte) error {
	parsed, err := ParseJoinKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Join is one JOIN ... ON left = right clause.
type Join struct {
	Kind     JoinKind `json:"kind" yaml:"kind"`
	Table    string   `json:"table" yaml:"table"`
	LeftKey  string   `json:"left_key" yaml:"left_key"`
	RightKey string   `json:"right_key" yaml:"right_key"`
}

// Limit holds LIMIT and OFFSET. StartPos is the offset of the LIMIT keyword
// and is informational only.
type Limit struct {
	Count    int `json:"count" yaml:"count"`
	Offset   int `json:"offset" yaml:"offset"`
	StartPos int `json:"start_position" yaml:"start_position"`
}

// Statement is the clause model of one analyzed SELECT.
//
// Where, GroupBy and OrderBy are empty and Limit is nil when the clause is
// absent. Columns and sources of nested selects in FROM are merged into the
// outer Columns and FromSources.
type Statement struct {
	Columns     []string `json:"columns" yaml:"columns"`
	FromSources []string `json:"from_sources" yaml:"from_sources"`
	Joins       []Join   `json:"joins,omitempty" yaml:"joins,omitempty"`
	Where       string   `json:"where,omitempty" yaml:"where,omitempty"`
	GroupBy     string   `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	OrderBy     string   `json:"order_by,omitempty" yaml:"order_by,omitempty"`
	Limit       *Limit   `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// HasWhere reports whether the statement carries a WHERE clause.
func (s *Statement) HasWhere() bool { return s.Where != "" }
