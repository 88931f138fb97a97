package schema

// Member is a named, typed attribute exposed by a model type.
type Member struct {
	Name string
	// Declared is the type name as written in the member table.
	Declared string
	// Type is the resolved model type, nil when Declared is a literal.
	Type     *Type
	List     bool
	Required bool
}

// TypeName returns the resolved model type name, or the literal declared type.
func (m Member) TypeName() string {
	if m.Type != nil {
		return m.Type.Name
	}
	return m.Declared
}

// MembersOf returns the members t exposes. With includeAncestors, members
// of every ancestor below the base type come first, root-most first, each in
// its own declaration order. Redeclared names are not deduplicated; apply
// entries in order so the most specific declaration wins.
func (s *Schema) MembersOf(t *Type, includeAncestors bool) []Member {
	if t == nil || t.Name == BaseType {
		return nil
	}
	var members []Member
	if includeAncestors {
		for super := t.Super; super != nil && super.Name != BaseType; super = super.Super {
			members = append(s.ownMembers(super), members...)
		}
	}
	return append(members, s.ownMembers(t)...)
}

// MemberNames is MembersOf reduced to unique names, in first-seen order.
func (s *Schema) MemberNames(t *Type) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range s.MembersOf(t, true) {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	return names
}

// HasMember reports whether t exposes a member with the given name.
func (s *Schema) HasMember(t *Type, name string) bool {
	for _, m := range s.MembersOf(t, true) {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (s *Schema) ownMembers(t *Type) []Member {
	if !t.hasTable {
		return nil
	}
	members := make([]Member, 0, len(t.members))
	for _, md := range t.members {
		members = append(members, Member{
			Name:     md.Name,
			Declared: md.Type,
			Type:     s.types[md.Type],
			List:     md.List,
			Required: md.Required,
		})
	}
	return members
}
