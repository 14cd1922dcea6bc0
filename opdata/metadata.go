package opdata

// Attribute is one name/value pair of a metadata node.
type Attribute struct {
	Name  string
	Value string
}

// Metadata is a free-form, nested annotation attached to operations and
// groups by the file front end. The engine carries it but never interprets
// it, except that the "name" and "id" attributes are used in log output.
type Metadata struct {
	Name       string
	Value      string
	Attributes []Attribute
	Children   []*Metadata
}

// NewMetadata creates an empty node with the given element name.
func NewMetadata(name string) *Metadata {
	return &Metadata{Name: name}
}

// Attribute returns the value of the named attribute.
func (m *Metadata) Attribute(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, a := range m.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute adds or replaces an attribute, keeping insertion order.
func (m *Metadata) SetAttribute(name, value string) {
	for i := range m.Attributes {
		if m.Attributes[i].Name == name {
			m.Attributes[i].Value = value
			return
		}
	}
	m.Attributes = append(m.Attributes, Attribute{Name: name, Value: value})
}

// AddChild appends a child node and returns it.
func (m *Metadata) AddChild(name, value string) *Metadata {
	c := &Metadata{Name: name, Value: value}
	m.Children = append(m.Children, c)
	return c
}

// IsEmpty reports whether the node carries no information.
func (m *Metadata) IsEmpty() bool {
	return m == nil || (m.Value == "" && len(m.Attributes) == 0 && len(m.Children) == 0)
}

// Clone returns a deep copy.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := &Metadata{Name: m.Name, Value: m.Value}
	if len(m.Attributes) > 0 {
		c.Attributes = append([]Attribute(nil), m.Attributes...)
	}
	for _, ch := range m.Children {
		c.Children = append(c.Children, ch.Clone())
	}
	return c
}

// Combine merges other into m: attributes missing from m are copied, and
// the "id" attributes of both are joined so a fused operation still names
// both of its sources.
func (m *Metadata) Combine(other *Metadata) {
	if other.IsEmpty() {
		return
	}
	for _, a := range other.Attributes {
		cur, ok := m.Attribute(a.Name)
		switch {
		case !ok:
			m.SetAttribute(a.Name, a.Value)
		case a.Name == "id" && cur != a.Value:
			m.SetAttribute("id", cur+" + "+a.Value)
		}
	}
	for _, ch := range other.Children {
		m.Children = append(m.Children, ch.Clone())
	}
}
