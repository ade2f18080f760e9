// Package pricesheet renders the catalog as a printable PDF price sheet.
package pricesheet

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/vostok-trade/backend/internal/models"
)

const contentType = "application/pdf"

// Render writes a PDF listing every product with its price.
func Render(w io.Writer, products []models.Product) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Price list", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "Price list", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for _, p := range products {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 8, tr("Title: "+p.Title), "", "L", false)
		pdf.SetFont("Helvetica", "", 14)
		pdf.CellFormat(0, 7, "Price: "+formatPrice(p.Price), "", 1, "L", false, 0, "")
		if p.Description != "" {
			pdf.SetFont("Helvetica", "", 12)
			pdf.MultiCell(0, 6, tr("Description: "+p.Description), "", "L", false)
		}
		pdf.Ln(5)
	}
	return pdf.Output(w)
}

func formatPrice(price *float64) string {
	if price == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*price, 'f', -1, 64) + " RUB"
}

// WriteFile renders products into dir as price-<unix millis>.pdf and returns
// the file path.
func WriteFile(dir string, products []models.Product, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("price-%d.pdf", now.UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Render(f, products); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("render price sheet: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Uploader stores an object and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Publish uploads a rendered sheet under a unique key.
func Publish(ctx context.Context, up Uploader, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	key := uuid.NewString() + "/" + filepath.Base(path)
	url, err := up.Upload(ctx, key, f, info.Size(), contentType)
	if err != nil {
		return "", fmt.Errorf("publish price sheet: %w", err)
	}
	return url, nil
}
