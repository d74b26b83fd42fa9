package state

// isReservedName reports whether a member name is reserved for the unit's
// built-in surface. Reserved names are never forwarded from local fields
// and methods using them shadow built-in members.
func isReservedName(name string) bool {
	return len(name) > 0 && (name[0] == '$' || name[0] == '_')
}

// reservedAttributes are globally reserved input names that collide with
// the hosting component model's own attributes.
var reservedAttributes = map[string]struct{}{
	"key":   {},
	"ref":   {},
	"slot":  {},
	"is":    {},
	"class": {},
	"style": {},
}

// isReservedAttribute reports whether an input name is globally reserved.
func isReservedAttribute(name string) bool {
	_, ok := reservedAttributes[name]
	return ok
}
