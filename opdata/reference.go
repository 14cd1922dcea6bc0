package opdata

// Reference points at another transform by file path or by alias. The
// engine cannot render it; a pipeline build resolves it through a resolver
// supplied by the file front end and fails if it cannot.
type Reference struct {
	base
	Path  string
	Alias string

	// Direction applies to the referenced transform as a whole.
	Direction Direction
}

// NewReference returns a reference to path.
func NewReference(path string) *Reference {
	return &Reference{Path: path}
}

// Kind returns KindReference.
func (*Reference) Kind() Kind { return KindReference }

// Target returns the alias if set, otherwise the path.
func (r *Reference) Target() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Path
}

// Validate checks that a target is named.
func (r *Reference) Validate() error {
	if r.Path == "" && r.Alias == "" {
		return invalidf(KindReference, "path", "a reference needs a path or an alias")
	}
	return nil
}

// Finalize validates and computes the cache identifier.
func (r *Reference) Finalize() error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.cacheID = newIDBuilder(KindReference).str(r.Path).str(r.Alias).int(int(r.Direction)).String()
	return nil
}

// Clone returns a copy.
func (r *Reference) Clone() Data {
	c := *r
	c.base = r.cloneBase()
	return &c
}

// Inverse flips the direction of the reference.
func (r *Reference) Inverse() (Data, error) {
	inv := r.Clone().(*Reference)
	inv.Direction = r.Direction.Inverse()
	inv.cacheID = ""
	return inv, nil
}

// IsIdentity returns false.
func (*Reference) IsIdentity() bool { return false }

// IdentityReplacement returns nil.
func (*Reference) IdentityReplacement() Data { return nil }

// Equal reports whether other names the same target in the same direction.
func (r *Reference) Equal(other Data) bool {
	o, ok := other.(*Reference)
	return ok && r.Path == o.Path && r.Alias == o.Alias && r.Direction == o.Direction
}

// HasChannelCrosstalk returns true: the referenced transform is unknown.
func (*Reference) HasChannelCrosstalk() bool { return true }
