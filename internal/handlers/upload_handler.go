package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/umtcnbyndr/eczane-crm/internal/models"
	"github.com/umtcnbyndr/eczane-crm/internal/repository"
	"github.com/umtcnbyndr/eczane-crm/internal/services"
)

// Expected header rows per file type. Uploads carry a fixed column
// contract; there is no fuzzy column mapping.
var uploadHeaders = map[models.UploadFileType][]string{
	models.UploadCustomerPoints: {
		"customer_code", "first_name", "last_name", "phone", "phone_secondary",
		"total_points", "points_tl_value", "birth_date",
	},
	models.UploadProductSales: {
		"barcode", "product_code", "name", "brand", "category",
		"unit_price", "stock_quantity", "kdv_rate", "usage_duration",
	},
	models.UploadCustomerSales: {
		"customer_code", "customer_name", "barcode", "product_name",
		"sale_date", "quantity", "unit_price", "total_amount", "kdv_amount",
	},
}

// Accepted date layouts. Exports from the source system use the dotted
// Turkish form; hand-edited sheets tend to use ISO.
var dateLayouts = []string{"2006-01-02", "02.01.2006"}

// UploadHandler handles spreadsheet upload HTTP requests
type UploadHandler struct {
	ingest     *services.IngestService
	uploadRepo *repository.UploadRepository
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(ingest *services.IngestService, uploadRepo *repository.UploadRepository) *UploadHandler {
	return &UploadHandler{ingest: ingest, uploadRepo: uploadRepo}
}

// Upload handles POST /api/v1/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	fileType := models.UploadFileType(c.PostForm("file_type"))
	if !fileType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_type must be CUSTOMER_POINTS, PRODUCT_SALES or CUSTOMER_SALES"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer file.Close()

	var records [][]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		records, err = parseCSV(file)
	case ".xlsx":
		records, err = parseXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv and .xlsx files are supported"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateHeader(records, fileType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dataRows := records[1:]

	batch := &models.UploadBatch{
		FileName: fileHeader.Filename,
		FileType: fileType,
	}
	if err := h.uploadRepo.Create(c.Request.Context(), batch); err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	switch fileType {
	case models.UploadCustomerPoints:
		err = h.ingest.IngestCustomerPoints(ctx, batch, toCustomerPointsRows(dataRows))
	case models.UploadProductSales:
		err = h.ingest.IngestProductSales(ctx, batch, toProductSalesRows(dataRows))
	case models.UploadCustomerSales:
		err = h.ingest.IngestCustomerSales(ctx, batch, toCustomerSalesRows(dataRows))
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// GetUpload handles GET /api/v1/uploads/:id
func (h *UploadHandler) GetUpload(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload ID"})
		return
	}

	batch, err := h.uploadRepo.GetByID(c.Request.Context(), batchID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// ListUploads handles GET /api/v1/uploads
func (h *UploadHandler) ListUploads(c *gin.Context) {
	batches, err := h.uploadRepo.ListRecent(c.Request.Context(), parseIntQuery(c, "limit", 20))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploads": batches,
		"total":   len(batches),
	})
}

func parseCSV(file io.Reader) ([][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return records, nil
}

func parseXLSX(file io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	return rows, nil
}

func validateHeader(records [][]string, fileType models.UploadFileType) error {
	expected := uploadHeaders[fileType]
	if len(records) == 0 {
		return fmt.Errorf("file is empty")
	}

	header := records[0]
	if len(header) < len(expected) {
		return fmt.Errorf("header has %d columns, expected %d", len(header), len(expected))
	}
	for i, want := range expected {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			return fmt.Errorf("column %d is %q, expected %q", i+1, header[i], want)
		}
	}
	return nil
}

// cell returns the trimmed cell at index i, tolerating short rows from
// xlsx exports that drop trailing empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloatCell(row []string, i int) float64 {
	v := strings.ReplaceAll(cell(row, i), ",", ".")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func parseIntCell(row []string, i int) int {
	n, _ := strconv.Atoi(cell(row, i))
	return n
}

func parseDateCell(row []string, i int) *time.Time {
	v := cell(row, i)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func toCustomerPointsRows(records [][]string) []models.CustomerPointsRow {
	rows := make([]models.CustomerPointsRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.CustomerPointsRow{
			CustomerCode:   cell(r, 0),
			FirstName:      cell(r, 1),
			LastName:       cell(r, 2),
			Phone:          cell(r, 3),
			PhoneSecondary: cell(r, 4),
			TotalPoints:    parseFloatCell(r, 5),
			PointsTLValue:  parseFloatCell(r, 6),
			BirthDate:      parseDateCell(r, 7),
		})
	}
	return rows
}

func toProductSalesRows(records [][]string) []models.ProductSalesRow {
	rows := make([]models.ProductSalesRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.ProductSalesRow{
			Barcode:       cell(r, 0),
			ProductCode:   cell(r, 1),
			Name:          cell(r, 2),
			BrandName:     cell(r, 3),
			Category:      models.ProductCategory(strings.ToUpper(cell(r, 4))),
			UnitPrice:     parseFloatCell(r, 5),
			StockQuantity: parseIntCell(r, 6),
			KDVRate:       parseIntCell(r, 7),
			UsageDuration: parseIntCell(r, 8),
		})
	}
	return rows
}

func toCustomerSalesRows(records [][]string) []models.CustomerSalesRow {
	rows := make([]models.CustomerSalesRow, 0, len(records))
	for _, r := range records {
		row := models.CustomerSalesRow{
			CustomerCode: cell(r, 0),
			CustomerName: cell(r, 1),
			Barcode:      cell(r, 2),
			ProductName:  cell(r, 3),
			Quantity:     parseIntCell(r, 5),
			UnitPrice:    parseFloatCell(r, 6),
			TotalAmount:  parseFloatCell(r, 7),
			KDVAmount:    parseFloatCell(r, 8),
		}
		if d := parseDateCell(r, 4); d != nil {
			row.SaleDate = *d
		}
		if row.Quantity == 0 {
			row.Quantity = 1
		}
		rows = append(rows, row)
	}
	return rows
}
