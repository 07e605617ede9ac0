// Package claims implements the claim bag attached to every principal and the
// merge rules applied when roles are granted or revoked.
package claims

import (
	"sort"

	"github.com/muster-hq/muster/internal/platform/httpx"
)

// AccessLevelKey is the reserved key used for the numeric access level when a
// bag is flattened into the string-keyed map stored on the account.
const AccessLevelKey = "accessLevel"

// Bag holds the boolean role flags and the numeric access level for one
// principal. AccessLevel tracks the highest level among held roles; a revoke
// may keep a stale-but-equal level via the short-circuit rule in Revoke.
type Bag struct {
	Roles       map[string]bool
	AccessLevel int
}

// NewBag returns an empty claim bag.
func NewBag() Bag {
	return Bag{Roles: map[string]bool{}}
}

// IsEmpty reports whether the bag holds no roles and no level.
func (b Bag) IsEmpty() bool {
	return len(b.Roles) == 0 && b.AccessLevel == 0
}

// Has reports whether the bag holds the given role.
func (b Bag) Has(role string) bool {
	return b.Roles[role]
}

// Clone returns a deep copy so merge operations never mutate their input.
func (b Bag) Clone() Bag {
	out := Bag{Roles: make(map[string]bool, len(b.Roles)), AccessLevel: b.AccessLevel}
	for role, held := range b.Roles {
		out.Roles[role] = held
	}
	return out
}

// ToMap flattens the bag into the string-keyed form persisted on the account
// record. Roles map to true; the access level sits under AccessLevelKey.
func (b Bag) ToMap() map[string]any {
	out := make(map[string]any, len(b.Roles)+1)
	for role, held := range b.Roles {
		if held {
			out[role] = true
		}
	}
	out[AccessLevelKey] = b.AccessLevel
	return out
}

// FromMap rebuilds a bag from its persisted form. Unknown value types are
// ignored; the level key accepts both int and float64 (JSON decoding).
func FromMap(raw map[string]any) Bag {
	bag := NewBag()
	for key, value := range raw {
		if key == AccessLevelKey {
			switch v := value.(type) {
			case int:
				bag.AccessLevel = v
			case int64:
				bag.AccessLevel = int(v)
			case float64:
				bag.AccessLevel = int(v)
			}
			continue
		}
		if held, ok := value.(bool); ok && held {
			bag.Roles[key] = true
		}
	}
	return bag
}

// Grant returns the bag after adding the role at the given level. An empty
// bag takes the role's level directly; otherwise the level only moves up,
// never down. Granting an already-held role is idempotent.
func Grant(current Bag, role string, level int) Bag {
	if current.IsEmpty() {
		next := NewBag()
		next.Roles[role] = true
		next.AccessLevel = level
		return next
	}
	next := current.Clone()
	next.Roles[role] = true
	if level > next.AccessLevel {
		next.AccessLevel = level
	}
	return next
}

// Revoke returns the bag after removing the role, recomputing the access
// level from the remaining roles using the levels table.
//
// The scan over remaining roles runs in sorted name order so the outcome is
// deterministic. If any remaining role's level equals the pre-revoke access
// level the scan stops and the level is kept as-is (first match wins); only
// otherwise does the level drop to the maximum among remaining roles, or 0
// when none remain.
func Revoke(current Bag, role string, levels map[string]int) (Bag, error) {
	if !current.Has(role) {
		return current, httpx.ErrNoRoleToRemove
	}

	next := current.Clone()
	delete(next.Roles, role)

	remaining := make([]string, 0, len(next.Roles))
	for name := range next.Roles {
		remaining = append(remaining, name)
	}
	sort.Strings(remaining)

	newLevel := 0
	for _, name := range remaining {
		level := levels[name]
		if level == current.AccessLevel {
			return next, nil
		}
		if level > newLevel {
			newLevel = level
		}
	}
	next.AccessLevel = newLevel
	return next, nil
}
