package catalog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vostok-trade/backend/internal/models"
)

// ErrInvalidRow is returned for a spreadsheet row that cannot become a product.
var ErrInvalidRow = errors.New("invalid price list row")

// column indexes for the recognised headers; -1 when absent.
type columns struct {
	title, description, price, image, details int
}

func mapHeader(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "title":
			c.title = i
		case "description":
			c.description = i
		case "price":
			c.price = i
		case "image":
			c.image = i
		case "details":
			c.details = i
		}
	}
	if c.title < 0 {
		return c, fmt.Errorf("price list: no title column in header %q", header)
	}
	return c, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParsePriceList reads the first sheet of an xlsx workbook. The first row is
// the header; blank rows are skipped.
func ParsePriceList(r io.Reader) ([]models.Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open price list: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("price list: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []models.Product{}, nil
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := n + 2
		p := models.Product{
			Title:       cell(row, cols.title),
			Description: cell(row, cols.description),
			Image:       cell(row, cols.image),
			Details:     cell(row, cols.details),
		}
		if p.Title == "" {
			return nil, fmt.Errorf("%w %d: missing title", ErrInvalidRow, line)
		}
		if p.Image == "" {
			p.Image = models.DefaultProductImage
		}
		if raw := cell(row, cols.price); raw != "" {
			price, err := parsePrice(raw)
			if err != nil {
				return nil, fmt.Errorf("%w %d: price %q is not a number", ErrInvalidRow, line, raw)
			}
			p.Price = &price
		}
		products = append(products, p)
	}
	return products, nil
}

// parsePrice reads a raw cell value. Numeric cells arrive unformatted; text
// cells may use a decimal comma.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(raw, 64)
	if err == nil {
		return price, nil
	}
	if strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		return strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	}
	return 0, err
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
