package components

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedNode marks an element of a content array that is not a usable
// component: not an object, no type, or props that are not an object.
var ErrMalformedNode = errors.New("components: malformed node")

// Node is a decoded component.
type Node struct {
	ID    string
	Type  string
	Kind  Kind
	Props map[string]any
	// Slots holds prop arrays of nested components keyed by prop name.
	Slots map[string][]*Node
	// Zones holds named drop zones attached to this node.
	Zones map[string][]*Node
}

// Tree is a decoded editor document.
type Tree struct {
	Content []*Node
	Root    map[string]any
	// Anomalies counts malformed nodes skipped while decoding.
	Anomalies int
}

// NodeID returns the id of a raw node, looking at props.id before id.
func NodeID(raw map[string]any) string {
	if props, ok := raw["props"].(map[string]any); ok {
		if id, ok := props["id"].(string); ok && id != "" {
			return id
		}
	}
	id, _ := raw["id"].(string)
	return id
}

// CheckNode validates the shape of a raw node.
func CheckNode(raw any) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrMalformedNode, raw)
	}
	typ, _ := obj["type"].(string)
	if strings.TrimSpace(typ) == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedNode)
	}
	if props, exists := obj["props"]; exists && props != nil {
		if _, ok := props.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: props of %q is %T", ErrMalformedNode, typ, props)
		}
	}
	return obj, nil
}

// IsNodeArray reports whether value is an array holding at least one
// element that looks like a component. Such arrays are slots; their
// malformed elements are anomalies, not a reason to drop the slot.
func IsNodeArray(value any) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if typ, _ := obj["type"].(string); strings.TrimSpace(typ) != "" {
			return true
		}
	}
	return false
}

// ParseTree decodes an editor document {content, root, zones}. Zones keyed
// "<nodeID>:<zone>" are attached to the owning node; zones of unknown owners
// are dropped.
func ParseTree(doc map[string]any) *Tree {
	tree := &Tree{}
	if root, ok := doc["root"].(map[string]any); ok {
		if props, ok := root["props"].(map[string]any); ok {
			tree.Root = props
		} else {
			tree.Root = root
		}
	}
	raw, _ := doc["content"].([]any)
	tree.Content = parseList(raw, &tree.Anomalies)

	zones, _ := doc["zones"].(map[string]any)
	if len(zones) == 0 {
		return tree
	}
	index := map[string]*Node{}
	Walk(tree.Content, func(n *Node, _ int) bool {
		if n.ID != "" {
			index[n.ID] = n
		}
		return true
	})
	keys := sortedKeys(zones)
	for _, key := range keys {
		ownerID, zone, ok := strings.Cut(key, ":")
		owner := index[ownerID]
		if !ok || owner == nil {
			continue
		}
		items, _ := zones[key].([]any)
		if owner.Zones == nil {
			owner.Zones = map[string][]*Node{}
		}
		owner.Zones[zone] = parseList(items, &tree.Anomalies)
	}
	return tree
}

// ParseContent decodes a bare content array.
func ParseContent(raw []any) ([]*Node, int) {
	anomalies := 0
	nodes := parseList(raw, &anomalies)
	return nodes, anomalies
}

func parseList(raw []any, anomalies *int) []*Node {
	out := make([]*Node, 0, len(raw))
	for _, item := range raw {
		node, err := parseNode(item, anomalies)
		if err != nil {
			*anomalies++
			continue
		}
		out = append(out, node)
	}
	return out
}

func parseNode(raw any, anomalies *int) (*Node, error) {
	obj, err := CheckNode(raw)
	if err != nil {
		return nil, err
	}
	typ := obj["type"].(string)
	props, _ := obj["props"].(map[string]any)
	node := &Node{
		ID:    NodeID(obj),
		Type:  typ,
		Kind:  ParseKind(typ),
		Props: props,
	}
	if node.Props == nil {
		node.Props = map[string]any{}
	}
	for _, key := range sortedKeys(node.Props) {
		value := node.Props[key]
		if !IsNodeArray(value) {
			continue
		}
		if node.Slots == nil {
			node.Slots = map[string][]*Node{}
		}
		node.Slots[key] = parseList(value.([]any), anomalies)
	}
	if nested, ok := obj["content"].([]any); ok {
		if node.Slots == nil {
			node.Slots = map[string][]*Node{}
		}
		node.Slots["content"] = parseList(nested, anomalies)
	}
	if zones, ok := obj["zones"].(map[string]any); ok {
		for _, name := range sortedKeys(zones) {
			items, _ := zones[name].([]any)
			if node.Zones == nil {
				node.Zones = map[string][]*Node{}
			}
			node.Zones[name] = parseList(items, anomalies)
		}
	}
	return node, nil
}

// Walk visits nodes depth first in document order: a node, then its slots
// by prop name, then its zones by zone name. fn receives the depth and
// returns false to skip the node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) bool) {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if !fn(node, depth) {
			continue
		}
		for _, name := range sortedNodeKeys(node.Slots) {
			walk(node.Slots[name], depth+1, fn)
		}
		for _, name := range sortedNodeKeys(node.Zones) {
			walk(node.Zones[name], depth+1, fn)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedNodeKeys(m map[string][]*Node) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
