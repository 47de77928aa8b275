package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"smart-shopper/internal/catalog"
	applog "smart-shopper/internal/log"
	"smart-shopper/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: List all products ---
func (h *Handler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog.List())
}

// --- GET: Lookup by scanned barcode ---
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.Catalog.Get(c.Param("barcode"))
	if err != nil {
		writeError(c, "product.lookup", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// productInput accepts either "images" or a single "image".
type productInput struct {
	Barcode     string   `json:"barcode" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Image       string   `json:"image"`
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	images := in.Images
	if images == nil && in.Image != "" {
		images = []string{in.Image}
	}

	p, err := h.Catalog.Create(models.Product{
		Barcode:     in.Barcode,
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		Images:      images,
	})
	if err != nil {
		writeError(c, "product.create", err)
		return
	}
	applog.Audit(c, "product.create", map[string]any{"barcode": p.Barcode, "price": p.Price})
	c.JSON(http.StatusCreated, p)
}

// --- PUT: Partial update, barcode rename allowed ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	p, err := h.Catalog.Update(c.Param("barcode"), patch)
	if err != nil {
		writeError(c, "product.update", err)
		return
	}
	applog.Audit(c, "product.update", map[string]any{"barcode": p.Barcode, "from": c.Param("barcode")})
	c.JSON(http.StatusOK, p)
}

// --- DELETE: Remove a product ---
func (h *Handler) DeleteProduct(c *gin.Context) {
	removed, err := h.Catalog.Delete(c.Param("barcode"))
	if err != nil {
		writeError(c, "product.delete", err)
		return
	}
	applog.Audit(c, "product.delete", map[string]any{"barcode": removed.Barcode})
	c.JSON(http.StatusOK, removed)
}

// --- POST: JSON array bulk upsert ---
func (h *Handler) BulkUpsert(c *gin.Context) {
	var records []catalog.BulkRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		badRequest(c, "Expected array of products")
		return
	}
	h.applyBulk(c, records)
}

// --- POST: Spreadsheet import (multipart "file", .xlsx or .csv) ---
func (h *Handler) ImportProducts(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	f, err := file.Open()
	if err != nil {
		writeError(c, "product.import", err)
		return
	}
	defer f.Close()

	records, err := catalog.ParseSheet(file.Filename, f)
	if err != nil {
		writeError(c, "product.import", err)
		return
	}
	h.applyBulk(c, records)
}

func (h *Handler) applyBulk(c *gin.Context, records []catalog.BulkRecord) {
	res, err := h.Catalog.BulkUpsert(records)
	if err != nil {
		writeError(c, "product.bulk", err)
		return
	}
	applog.Audit(c, "product.bulk", map[string]any{"added": res.Added, "updated": res.Updated, "skipped": res.Skipped})
	c.JSON(http.StatusOK, gin.H{
		"message": "Bulk upload successful",
		"added":   res.Added,
		"updated": res.Updated,
		"skipped": res.Skipped,
	})
}

// --- GET: Blank spreadsheet for bulk import ---
func (h *Handler) DownloadTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="inventory_template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := catalog.WriteTemplate(c.Writer); err != nil {
		applog.Error(c, "product.template", err, nil)
	}
}

// --- POST: Attach an image, either {"image": "<url or data url>"} or a multipart "file" ---
func (h *Handler) UploadImage(c *gin.Context) {
	barcode := c.Param("barcode")
	var ref string

	if file, err := c.FormFile("file"); err == nil {
		if h.UploadDir == "" {
			badRequest(c, "File uploads are disabled")
			return
		}
		// Generate a safe unique filename, e.g. "1700000000_milo.jpg"
		filename := fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(file.Filename))
		if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
			writeError(c, "product.image", err)
			return
		}
		if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, filename)); err != nil {
			writeError(c, "product.image", err)
			return
		}
		ref = "/uploads/" + filename
	} else {
		var body struct {
			Image string `json:"image" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "No image provided")
			return
		}
		ref = body.Image
	}

	count, err := h.Catalog.AddImage(barcode, ref)
	if err != nil {
		writeError(c, "product.image", err)
		return
	}
	applog.Audit(c, "product.image", map[string]any{"barcode": barcode, "count": count})
	c.JSON(http.StatusOK, gin.H{"message": "Image added successfully", "barcode": models.NormalizeBarcode(barcode), "count": count})
}
