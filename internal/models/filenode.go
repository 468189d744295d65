package models

import (
	"encoding/base64"
	"fmt"
)

// NodeType distinguishes file and folder nodes in an uploaded tree.
type NodeType string

const (
	NodeFile   NodeType = "file"
	NodeFolder NodeType = "folder"
)

// FileNode is the in-memory form of one node in an uploaded document tree.
// File nodes carry their raw payload until it has been persisted to object
// storage, at which point ContentRef replaces the payload. A node never holds
// both at the same time.
type FileNode struct {
	Name        string      `json:"name"`
	Type        NodeType    `json:"type"`
	FullPath    string      `json:"fullPath"`
	Children    []*FileNode `json:"children,omitempty"`
	Payload     []byte      `json:"-"`
	ContentRef  string      `json:"contentRef,omitempty"`
	Selected    bool        `json:"selected"`
	Highlighted bool        `json:"highlighted"`
}

// FileNodeDTO is the wire form of FileNode. Payload bytes travel as base64 in
// Content; once a file lives in object storage only ContentRef is set.
type FileNodeDTO struct {
	Name        string         `json:"name"`
	Type        NodeType       `json:"type"`
	FullPath    string         `json:"fullPath"`
	Children    []*FileNodeDTO `json:"children,omitempty"`
	Content     string         `json:"content,omitempty"`
	ContentRef  string         `json:"contentRef,omitempty"`
	Selected    bool           `json:"selected"`
	Highlighted bool           `json:"highlighted"`
}

// ToDTO converts a tree to its wire form. With stripPayload set the payload is
// dropped instead of base64-encoded, which is how trees are persisted inside a
// session blob (payloads live in object storage, referenced by ContentRef).
func (n *FileNode) ToDTO(stripPayload bool) *FileNodeDTO {
	if n == nil {
		return nil
	}
	dto := &FileNodeDTO{
		Name:        n.Name,
		Type:        n.Type,
		FullPath:    n.FullPath,
		ContentRef:  n.ContentRef,
		Selected:    n.Selected,
		Highlighted: n.Highlighted,
	}
	if !stripPayload && len(n.Payload) > 0 {
		dto.Content = base64.StdEncoding.EncodeToString(n.Payload)
	}
	for _, c := range n.Children {
		dto.Children = append(dto.Children, c.ToDTO(stripPayload))
	}
	return dto
}

// FromDTO converts a wire tree back to its in-memory form, decoding any inline
// base64 payloads.
func (d *FileNodeDTO) FromDTO() (*FileNode, error) {
	if d == nil {
		return nil, nil
	}
	n := &FileNode{
		Name:        d.Name,
		Type:        d.Type,
		FullPath:    d.FullPath,
		ContentRef:  d.ContentRef,
		Selected:    d.Selected,
		Highlighted: d.Highlighted,
	}
	if d.Content != "" {
		payload, err := base64.StdEncoding.DecodeString(d.Content)
		if err != nil {
			return nil, fmt.Errorf("decode payload of %q: %w", d.FullPath, err)
		}
		n.Payload = payload
	}
	for _, c := range d.Children {
		child, err := c.FromDTO()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// Walk visits every node in a stable depth-first order, parents before
// children, children in insertion order. The pipeline relies on this order
// for its file-level progress reporting.
func (n *FileNode) Walk(fn func(*FileNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Files returns the file nodes of the tree in depth-first order.
func (n *FileNode) Files() []*FileNode {
	var files []*FileNode
	n.Walk(func(node *FileNode) {
		if node.Type == NodeFile {
			files = append(files, node)
		}
	})
	return files
}

// Find returns the node with the given full path, or nil.
func (n *FileNode) Find(fullPath string) *FileNode {
	var found *FileNode
	n.Walk(func(node *FileNode) {
		if found == nil && node.FullPath == fullPath {
			found = node
		}
	})
	return found
}
