package domain

import "sort"

// OrgTree indexes organizational units by id and by parent.
type OrgTree struct {
	units    map[string]OrganizationalUnit
	children map[string][]string
}

// NewOrgTree builds a tree from a flat unit list. Children are kept sorted by name.
func NewOrgTree(units []OrganizationalUnit) *OrgTree {
	t := &OrgTree{
		units:    make(map[string]OrganizationalUnit, len(units)),
		children: make(map[string][]string),
	}
	for _, u := range units {
		t.units[u.UnitID] = u
	}
	for _, u := range units {
		if u.IsRoot() {
			continue
		}
		t.children[*u.ParentID] = append(t.children[*u.ParentID], u.UnitID)
	}
	for parent := range t.children {
		ids := t.children[parent]
		sort.SliceStable(ids, func(i, j int) bool {
			return t.units[ids[i]].Name < t.units[ids[j]].Name
		})
	}
	return t
}

// Unit returns the unit with id.
func (t *OrgTree) Unit(id string) (OrganizationalUnit, bool) {
	u, ok := t.units[id]
	return u, ok
}

// Parent returns the parent of id, if any.
func (t *OrgTree) Parent(id string) (OrganizationalUnit, bool) {
	u, ok := t.units[id]
	if !ok || u.IsRoot() {
		return OrganizationalUnit{}, false
	}
	return t.Unit(*u.ParentID)
}

// Roots lists units without a parent.
func (t *OrgTree) Roots() []OrganizationalUnit {
	var roots []OrganizationalUnit
	for _, u := range t.units {
		if u.IsRoot() {
			roots = append(roots, u)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	return roots
}

// Children lists the direct children of id.
func (t *OrgTree) Children(id string) []OrganizationalUnit {
	ids := t.children[id]
	out := make([]OrganizationalUnit, 0, len(ids))
	for _, cid := range ids {
		out = append(out, t.units[cid])
	}
	return out
}

// HasChildren reports whether id aggregates other units.
func (t *OrgTree) HasChildren(id string) bool {
	return len(t.children[id]) > 0
}

// Descendants lists every unit below id, depth first.
func (t *OrgTree) Descendants(id string) []OrganizationalUnit {
	var out []OrganizationalUnit
	visited := map[string]bool{id: true}
	var walk func(string)
	walk = func(parent string) {
		for _, cid := range t.children[parent] {
			if visited[cid] {
				continue
			}
			visited[cid] = true
			out = append(out, t.units[cid])
			walk(cid)
		}
	}
	walk(id)
	return out
}

// SubtreeIDs returns id followed by the ids of all its descendants.
func (t *OrgTree) SubtreeIDs(id string) []string {
	desc := t.Descendants(id)
	ids := make([]string, 0, len(desc)+1)
	ids = append(ids, id)
	for _, u := range desc {
		ids = append(ids, u.UnitID)
	}
	return ids
}

// Path returns the chain of units from the root down to id.
func (t *OrgTree) Path(id string) []OrganizationalUnit {
	var reversed []OrganizationalUnit
	seen := map[string]bool{}
	current, ok := t.units[id]
	for ok && !seen[current.UnitID] {
		seen[current.UnitID] = true
		reversed = append(reversed, current)
		if current.IsRoot() {
			break
		}
		current, ok = t.units[*current.ParentID]
	}
	path := make([]OrganizationalUnit, len(reversed))
	for i, u := range reversed {
		path[len(reversed)-1-i] = u
	}
	return path
}

// IsAncestor reports whether ancestorID lies strictly above id.
func (t *OrgTree) IsAncestor(ancestorID, id string) bool {
	if ancestorID == id {
		return false
	}
	for _, u := range t.Path(id) {
		if u.UnitID == ancestorID {
			return true
		}
	}
	return false
}

// DirectChildToward returns the direct child of ancestorID whose subtree contains id.
func (t *OrgTree) DirectChildToward(id, ancestorID string) (OrganizationalUnit, bool) {
	path := t.Path(id)
	for i, u := range path {
		if u.UnitID == ancestorID && i+1 < len(path) {
			return path[i+1], true
		}
	}
	return OrganizationalUnit{}, false
}

// Covers reports whether id is unitID itself or one of its descendants.
func (t *OrgTree) Covers(unitID, id string) bool {
	return unitID == id || t.IsAncestor(unitID, id)
}
