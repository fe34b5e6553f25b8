package handlers

import (
	"context"
	"log"

	"app/database"
	"app/ingestion"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler serves the ingestion side: file upload and upload history.
type UploadHandler struct {
	Pipeline *ingestion.Pipeline
	Store    database.Store
}

func NewUploadHandler(pipeline *ingestion.Pipeline, store database.Store) *UploadHandler {
	return &UploadHandler{Pipeline: pipeline, Store: store}
}

// HandleUploadTransactions ingests a multipart CSV upload and returns the
// import summary. Partial failures still produce a summary; only a fatal
// parse or storage error surfaces as an HTTP failure.
func (h *UploadHandler) HandleUploadTransactions(c *fiber.Ctx) error {
	ctx := context.Background()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Missing file upload"})
	}

	uploadedBy, _ := c.Locals("userID").(string)

	f, err := fileHeader.Open()
	if err != nil {
		log.Printf("❌ [UPLOAD] could not open %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to read upload"})
	}
	defer f.Close()

	log.Printf("📥 [UPLOAD] %s (%d bytes) from user %s", fileHeader.Filename, fileHeader.Size, uploadedBy)

	summary, err := h.Pipeline.Import(ctx, f, fileHeader.Filename, fileHeader.Size, uploadedBy, func(p ingestion.Progress) {
		log.Printf("📊 [UPLOAD] %s progress: %d/%d processed, %d imported, %d errors",
			fileHeader.Filename, p.Processed, p.Total, p.Imported, p.Errors)
	})
	if err != nil {
		status := fiber.StatusBadRequest
		if database.Classify(err) == database.KindConnectivity {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{"status": "error", "message": err.Error(), "data": summary})
	}

	return c.JSON(fiber.Map{"status": "success", "data": summary})
}

// HandleListUploads returns recent upload records, newest first.
func (h *UploadHandler) HandleListUploads(c *fiber.Ctx) error {
	ctx := context.Background()

	limit := c.QueryInt("limit", 20)
	uploads, err := h.Store.ListUploads(ctx, limit)
	if err != nil {
		log.Printf("❌ [UPLOAD] listing upload records failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve uploads"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": uploads})
}
