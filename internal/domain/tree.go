package domain

import "sort"

// NodeType discriminates tree nodes.
type NodeType string

const (
	NodeTypeFile   NodeType = "file"
	NodeTypeFolder NodeType = "folder"
)

// TreeNode is one entry of the rendered workspace tree. Only folder nodes
// carry Children.
type TreeNode struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       NodeType    `json:"type"`
	ParentID   string      `json:"parentId"`
	Order      int         `json:"order"`
	IsExpanded bool        `json:"isExpanded,omitempty"`
	Children   []*TreeNode `json:"children,omitempty"`
}

// BuildTree assembles the display forest from flat file and folder slices.
// Entries whose parent folder does not exist are promoted to roots, so a
// partially inconsistent store still renders. Inputs are never mutated and
// the result depends only on the input contents.
func BuildTree(files []*File, folders []*Folder) []*TreeNode {
	folderNodes := make(map[string]*TreeNode, len(folders))
	for _, f := range folders {
		folderNodes[f.ID] = &TreeNode{
			ID:         f.ID,
			Name:       f.Name,
			Type:       NodeTypeFolder,
			ParentID:   f.ParentID,
			Order:      f.Order,
			IsExpanded: f.IsExpanded,
		}
	}

	var roots []*TreeNode

	for _, f := range folders {
		node := folderNodes[f.ID]
		if parent, ok := folderNodes[f.ParentID]; ok && f.ParentID != f.ID {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	for _, f := range files {
		node := &TreeNode{
			ID:       f.ID,
			Name:     f.Name,
			Type:     NodeTypeFile,
			ParentID: f.ParentID,
			Order:    f.Order,
		}
		if parent, ok := folderNodes[f.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	sortNodes(roots)
	for _, node := range folderNodes {
		sortNodes(node.Children)
	}

	return roots
}

// sortNodes orders siblings folders-before-files, then by ascending Order.
// Ties keep input order, which makes the build deterministic.
func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Type != nodes[j].Type {
			return nodes[i].Type == NodeTypeFolder
		}
		return nodes[i].Order < nodes[j].Order
	})
}
