// Package loader turns uploaded archives and folder selections into in-memory
// FileNode trees for the analysis pipeline.
package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"dealscope/internal/models"
	"dealscope/pkg/logger"
)

var log = logger.New("loader")

// NamedFile is one file of a folder upload: a slash-delimited path relative to
// the selected folder plus its content.
type NamedFile struct {
	Path string
	Data []byte
}

// LoadZip decompresses a zip archive into a FileNode tree rooted at the
// archive name (without the .zip suffix). Entries appear in archive order;
// an unreadable entry is skipped with a warning, never failing the batch.
func LoadZip(name string, data []byte) (*models.FileNode, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip %q: %w", name, err)
	}

	root := newRoot(strings.TrimSuffix(name, ".zip"))
	b := treeBuilder{root: root, folders: map[string]*models.FileNode{root.FullPath: root}}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || isJunkPath(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			log.WithField("entry", entry.Name).WithError(err).Warn("skipping unreadable zip entry")
			continue
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.WithField("entry", entry.Name).WithError(err).Warn("skipping unreadable zip entry")
			continue
		}
		b.addFile(entry.Name, payload)
	}

	return root, nil
}

// LoadFiles builds a FileNode tree from (relative path, bytes) pairs, as
// produced by a folder upload. Files keep their given order.
func LoadFiles(rootName string, files []NamedFile) (*models.FileNode, error) {
	if rootName == "" {
		return nil, fmt.Errorf("folder upload needs a root name")
	}

	root := newRoot(rootName)
	b := treeBuilder{root: root, folders: map[string]*models.FileNode{root.FullPath: root}}

	for _, f := range files {
		if isJunkPath(f.Path) {
			continue
		}
		b.addFile(f.Path, f.Data)
	}

	return root, nil
}

func newRoot(name string) *models.FileNode {
	return &models.FileNode{
		Name:     name,
		Type:     models.NodeFolder,
		FullPath: name,
	}
}

// treeBuilder creates intermediate folder nodes on demand and reuses them for
// sibling entries, keeping FullPath unique across the tree.
type treeBuilder struct {
	root    *models.FileNode
	folders map[string]*models.FileNode
}

func (b *treeBuilder) addFile(relPath string, payload []byte) {
	relPath = strings.Trim(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), "/")
	if relPath == "" || relPath == "." {
		return
	}

	segments := strings.Split(relPath, "/")
	parent := b.root
	for _, segment := range segments[:len(segments)-1] {
		parent = b.folder(parent, segment)
	}

	fileName := segments[len(segments)-1]
	node := &models.FileNode{
		Name:     fileName,
		Type:     models.NodeFile,
		FullPath: parent.FullPath + "/" + fileName,
		Payload:  payload,
	}
	parent.Children = append(parent.Children, node)
}

func (b *treeBuilder) folder(parent *models.FileNode, name string) *models.FileNode {
	fullPath := parent.FullPath + "/" + name
	if existing, ok := b.folders[fullPath]; ok {
		return existing
	}
	node := &models.FileNode{
		Name:     name,
		Type:     models.NodeFolder,
		FullPath: fullPath,
	}
	parent.Children = append(parent.Children, node)
	b.folders[fullPath] = node
	return node
}

// isJunkPath filters archive noise that should never reach extraction.
func isJunkPath(p string) bool {
	if strings.HasPrefix(p, "__MACOSX/") {
		return true
	}
	base := path.Base(p)
	return base == ".DS_Store" || base == "Thumbs.db"
}
