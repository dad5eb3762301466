package domain

// Node is an entity in the knowledge graph. Identity is the ID; two
// nodes with the same ID within one graph are a structural conflict.
type Node struct {
	id         string
	label      string
	properties PropertyBag
}

// NewNode creates a node with validation. The property bag is copied so
// the caller cannot mutate the node through the original map.
func NewNode(id, label string, properties PropertyBag) (*Node, error) {
	if id == "" {
		return nil, ErrEmptyNodeID
	}
	if label == "" {
		return nil, ErrEmptyNodeLabel
	}
	return &Node{
		id:         id,
		label:      label,
		properties: properties.Clone(),
	}, nil
}

// MustNewNode is a convenience constructor for fixtures and builders
// where the inputs are statically known to be valid.
func MustNewNode(id, label string, properties PropertyBag) *Node {
	node, err := NewNode(id, label, properties)
	if err != nil {
		panic(err)
	}
	return node
}

// ID returns the node's unique identifier.
func (n *Node) ID() string {
	return n.id
}

// Label returns the node's label (type).
func (n *Node) Label() string {
	return n.label
}

// Properties returns an independent copy of the node's property bag.
func (n *Node) Properties() PropertyBag {
	return n.properties.Clone()
}

// Property returns a single property value; ok is false if absent.
func (n *Node) Property(key string) (PropertyValue, bool) {
	value, ok := n.properties[key]
	return value, ok
}

// WithProperty sets a property and returns the node for chaining.
func (n *Node) WithProperty(key string, value PropertyValue) *Node {
	if n.properties == nil {
		n.properties = NewPropertyBag()
	}
	n.properties[key] = value
	return n
}

// Equal reports whether two nodes have the same identity, label, and
// property bag.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.id == other.id &&
		n.label == other.label &&
		n.properties.Equal(other.properties)
}
