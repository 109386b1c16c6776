package coa

import (
	"fmt"
	"sort"
)

// Node is an account with its resolved children. The arena built by BuildTree
// is keyed by head code; the name-based parent reference is resolved exactly
// once so renames cannot corrupt an already-built tree.
type Node struct {
	Account
	Children []*Node
}

// BuildTree groups a flat account list into a forest. Accounts whose parent
// name is absent or does not resolve become roots. A parent chain that loops
// back on itself is reported as ErrCycle naming the offending account.
func BuildTree(accounts []Account) ([]*Node, error) {
	byName := make(map[string]*Node, len(accounts))
	nodes := make([]*Node, 0, len(accounts))
	for _, acc := range accounts {
		node := &Node{Account: acc}
		nodes = append(nodes, node)
		byName[acc.HeadName] = node
	}

	if err := detectCycles(nodes, byName); err != nil {
		return nil, err
	}

	var roots []*Node
	for _, node := range nodes {
		if node.ParentHeadName == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byName[*node.ParentHeadName]
		if !ok {
			// Orphaned reference: surface the node at the top rather
			// than dropping it from every report.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	return roots, nil
}

// detectCycles walks each parent chain with a visited set so a corrupted
// chain (A -> B -> A) fails loudly instead of looping.
func detectCycles(nodes []*Node, byName map[string]*Node) error {
	for _, node := range nodes {
		visited := map[string]bool{node.HeadName: true}
		current := node
		for current.ParentHeadName != nil {
			parent, ok := byName[*current.ParentHeadName]
			if !ok {
				break
			}
			if visited[parent.HeadName] {
				return fmt.Errorf("%w: detected at %q", ErrCycle, parent.HeadName)
			}
			visited[parent.HeadName] = true
			current = parent
		}
	}
	return nil
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].HeadCode < nodes[j].HeadCode
	})
	for _, node := range nodes {
		sortNodes(node.Children)
	}
}
