package token

// DataName is a qualified markup name.
type DataName struct {
	Local     string
	Prefix    string
	Namespace string
}

func NewName(local string) DataName {
	return DataName{Local: local}
}

// Equal compares the local name and namespace URI only, so two different
// prefixes bound to the same namespace name the same thing.
func (n DataName) Equal(other DataName) bool {
	return n.Local == other.Local && n.Namespace == other.Namespace
}

func (n DataName) IsEmpty() bool {
	return n.Local == ""
}

func (n DataName) String() string {
	if n.Prefix == "" {
		return n.Local
	}

	return n.Prefix + ":" + n.Local
}

// Qualified renders the name in {namespace}local form.
func (n DataName) Qualified() string {
	if n.Namespace == "" {
		return n.Local
	}

	return "{" + n.Namespace + "}" + n.Local
}
