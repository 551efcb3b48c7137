package main

import (
	"fmt"
	"sort"

	"github.com/xlab/treeprint"

	"github.com/ridasaidd/byteforge-sub002/internal/components"
)

// renderTree prints the decoded component tree with slots and zones as
// branches.
func renderTree(tree *components.Tree) string {
	root := treeprint.NewWithRoot(fmt.Sprintf("document (%d nodes, %d anomalies)", len(tree.Content), tree.Anomalies))
	for _, node := range tree.Content {
		addNode(root, node)
	}
	return root.String()
}

func addNode(parent treeprint.Tree, node *components.Node) {
	label := node.Type
	if node.ID != "" {
		label += "#" + node.ID
	}
	if node.Kind == components.KindUnknown {
		label += " (unknown)"
	}
	if len(node.Slots) == 0 && len(node.Zones) == 0 {
		parent.AddNode(label)
		return
	}
	branch := parent.AddBranch(label)
	addGroups(branch, "slot", node.Slots)
	addGroups(branch, "zone", node.Zones)
}

func addGroups(branch treeprint.Tree, kind string, groups map[string][]*components.Node) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := branch.AddBranch(kind + ":" + name)
		for _, child := range groups[name] {
			addNode(group, child)
		}
	}
}
