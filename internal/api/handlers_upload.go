package api

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"dealscope/internal/extractor"
	"dealscope/internal/loader"
	"dealscope/internal/models"
	"dealscope/internal/store"
)

// CreateUpload persists a new document batch. The request is multipart: either
// a single "archive" zip or any number of "files" parts whose filenames carry
// paths relative to the selected folder.
func (h *Handler) CreateUpload(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload name"})
		return
	}

	tree, ok := h.readUploadTree(c, name)
	if !ok {
		return
	}

	uploadID, err := h.store.CreateUpload(c.Request.Context(), currentUserID(c), name, fileInputs(tree))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadId": uploadID})
}

// UpdateUpload re-runs a batch traversal against an existing upload and
// upserts new or changed files.
func (h *Handler) UpdateUpload(c *gin.Context) {
	uploadID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetUpload(c.Request.Context(), uploadID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}

	tree, ok := h.readUploadTree(c, "update")
	if !ok {
		return
	}

	if err := h.store.UpdateUpload(c.Request.Context(), uploadID, fileInputs(tree)); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": uploadID})
}

// ListUploads returns the caller's uploads with file metadata.
func (h *Handler) ListUploads(c *gin.Context) {
	uploads, err := h.store.ListUploads(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, uploads)
}

// GetUpload returns one upload with file metadata.
func (h *Handler) GetUpload(c *gin.Context) {
	uploadID, ok := pathID(c, "id")
	if !ok {
		return
	}

	upload, err := h.store.GetUpload(c.Request.Context(), uploadID, currentUserID(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

// DownloadUploadFile streams one stored file payload back to the caller.
func (h *Handler) DownloadUploadFile(c *gin.Context) {
	uploadID, ok := pathID(c, "id")
	if !ok {
		return
	}
	filePath := c.Query("path")
	if filePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
		return
	}

	upload, err := h.store.GetUpload(c.Request.Context(), uploadID, currentUserID(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	for _, f := range upload.Files {
		if f.FilePath != filePath {
			continue
		}
		data, err := h.store.ReadFilePayload(c.Request.Context(), f.ObjectKey)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, data)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "file not in upload"})
}

// DeleteUpload removes an upload, its file rows, and its payloads.
func (h *Handler) DeleteUpload(c *gin.Context) {
	uploadID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteUpload(c.Request.Context(), uploadID, currentUserID(c)); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": uploadID})
}

// readUploadTree builds a FileNode tree from the request's multipart content.
func (h *Handler) readUploadTree(c *gin.Context, rootName string) (*models.FileNode, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form"})
		return nil, false
	}

	if archives := form.File["archive"]; len(archives) > 0 {
		data, err := readPart(archives[0])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		tree, err := loader.LoadZip(archives[0].Filename, data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		return tree, true
	}

	parts := form.File["files"]
	if len(parts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no archive or files provided"})
		return nil, false
	}
	files := make([]loader.NamedFile, 0, len(parts))
	for _, part := range parts {
		data, err := readPart(part)
		if err != nil {
			h.log.WithField("file", part.Filename).WithError(err).Warn("skipping unreadable upload part")
			continue
		}
		files = append(files, loader.NamedFile{Path: part.Filename, Data: data})
	}
	tree, err := loader.LoadFiles(rootName, files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return tree, true
}

func readPart(part *multipart.FileHeader) ([]byte, error) {
	f, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fileInputs flattens a tree into store inputs, extracting text up front so
// re-opening the batch later needs no re-parse.
func fileInputs(tree *models.FileNode) []store.FileInput {
	files := tree.Files()
	inputs := make([]store.FileInput, 0, len(files))
	for _, f := range files {
		text, ok, _ := extractor.Extract(f.Name, f.Payload)
		extraction := ""
		if ok {
			extraction = text
		}
		inputs = append(inputs, store.FileInput{
			Path:        f.FullPath,
			ContentType: mimetype.Detect(f.Payload).String(),
			Data:        f.Payload,
			Extraction:  extraction,
		})
	}
	return inputs
}
