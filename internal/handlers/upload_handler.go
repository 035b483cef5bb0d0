package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/utils"
)

// UploadHandler stores evidence files and hands back the opaque reference a
// submission carries. Nothing else ever interprets the reference.
type UploadHandler struct {
	rootDir string
}

func NewUploadHandler(rootDir string) *UploadHandler {
	return &UploadHandler{rootDir: rootDir}
}

const maxEvidenceSize = 10 << 20 // 10 MiB

// POST /uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evidence file is required"})
		return
	}
	if file.Size > maxEvidenceSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10 MB)"})
		return
	}

	name, err := utils.NewRandomToken(16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	ref := filepath.Join("evidence", name+ext)

	dir := filepath.Join(h.rootDir, "evidence")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[upload][err] mkdir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.rootDir, ref)); err != nil {
		log.Printf("[upload][err] save: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	log.Printf("[upload][ok] user=%d ref=%s size=%d", userID, ref, file.Size)
	c.JSON(http.StatusCreated, gin.H{"evidence": ref})
}

// GET /uploads/*ref (admin review)
func (h *UploadHandler) Serve(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")
	abs := filepath.Join(h.rootDir, filepath.Clean(ref))
	// never escape the storage root
	if !strings.HasPrefix(abs, filepath.Clean(h.rootDir)+string(os.PathSeparator)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference"})
		return
	}
	c.File(abs)
}
