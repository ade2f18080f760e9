package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vostok-trade/backend/internal/models"
)

type memProducts struct {
	items      []models.Product
	listErr    error
	createErr  error
	replaceErr error
}

func (m *memProducts) List(context.Context) ([]models.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Product{}, m.items...), nil
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = primitive.NewObjectID()
	m.items = append(m.items, *p)
	return nil
}

func (m *memProducts) ReplaceAll(_ context.Context, products []models.Product) (int, error) {
	if m.replaceErr != nil {
		m.items = nil
		return 0, m.replaceErr
	}
	m.items = append([]models.Product{}, products...)
	return len(products), nil
}

// writeWorkbook saves rows to an xlsx file in dir.
func writeWorkbook(t *testing.T, dir string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	path := filepath.Join(dir, "price.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestParsePriceList(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{" Title ", "PRICE", "Description", "Stock", "Image"},
		{"Steel pipe", 120.5, "DN50", 12, ""},
		{},
		{"Ball valve", "", "", 3, "/img/valve.jpg"},
		{"Flange", "99,9"},
	})

	products, err := ParsePriceList(r)
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "Steel pipe", products[0].Title)
	require.NotNil(t, products[0].Price)
	assert.InDelta(t, 120.5, *products[0].Price, 0.0001)
	assert.Equal(t, "DN50", products[0].Description)
	assert.Equal(t, models.DefaultProductImage, products[0].Image)

	assert.Nil(t, products[1].Price)
	assert.Equal(t, "/img/valve.jpg", products[1].Image)

	require.NotNil(t, products[2].Price)
	assert.InDelta(t, 99.9, *products[2].Price, 0.0001)
}

func TestParsePriceListReadsFormattedNumbers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"title", "price"},
		{"Steel pipe", 1234.5},
		{"Ball valve", 15990},
		{"Gasket", 0.15},
		{"Flange", "1 250,5"},
	}
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	require.NoError(t, err)
	currency, err := f.NewStyle(&excelize.Style{NumFmt: 7}) // $#,##0.00_);($#,##0.00)
	require.NoError(t, err)
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "B3", "B3", currency))
	require.NoError(t, f.SetCellStyle("Sheet1", "B4", "B4", percent))

	formatted, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	require.Equal(t, "1,234.50", formatted)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParsePriceList(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, ErrInvalidRow, "text with a thousands separator is not a price")

	require.NoError(t, f.SetCellValue("Sheet1", "B5", "1250,5"))
	buf, err = f.WriteToBuffer()
	require.NoError(t, err)

	products, err := ParsePriceList(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.InDelta(t, 1234.5, *products[0].Price, 0.0001)
	assert.InDelta(t, 15990, *products[1].Price, 0.0001)
	assert.InDelta(t, 0.15, *products[2].Price, 0.0001)
	assert.InDelta(t, 1250.5, *products[3].Price, 0.0001)
}

func TestParsePrice(t *testing.T) {
	for raw, want := range map[string]float64{
		"1234.5": 1234.5,
		"99,9":   99.9,
		"1e3":    1000,
		"-5":     -5,
	} {
		got, err := parsePrice(raw)
		require.NoError(t, err, raw)
		assert.InDelta(t, want, got, 0.0001, raw)
	}
	for _, raw := range []string{"1,234.50", "1,2,3", "call us"} {
		_, err := parsePrice(raw)
		assert.Error(t, err, raw)
	}
}

func TestParsePriceListRejectsBadRows(t *testing.T) {
	_, err := ParsePriceList(workbookBytes(t, [][]interface{}{
		{"title", "price"},
		{"Pipe", "call us"},
	}))
	require.ErrorIs(t, err, ErrInvalidRow)

	_, err = ParsePriceList(workbookBytes(t, [][]interface{}{
		{"title", "price"},
		{"", 10},
	}))
	require.ErrorIs(t, err, ErrInvalidRow)

	_, err = ParsePriceList(workbookBytes(t, [][]interface{}{
		{"name", "price"},
		{"Pipe", 10},
	}))
	require.ErrorContains(t, err, "no title column")

	_, err = ParsePriceList(strings.NewReader("not a workbook"))
	require.Error(t, err)
}

func TestImportReplacesCatalog(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), [][]interface{}{
		{"title", "price"},
		{"a", 1},
		{"b", 2},
		{"c", 3},
	})
	store := &memProducts{items: make([]models.Product, 7)}
	h := NewHandler(store, path)

	rec := httptest.NewRecorder()
	h.ImportPriceList(rec, httptest.NewRequest(http.MethodPost, "/api/upload-price", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Price list updated","count":3}`, rec.Body.String())
	require.Len(t, store.items, 3)
}

func TestImportFailures(t *testing.T) {
	store := &memProducts{items: make([]models.Product, 2)}
	h := NewHandler(store, filepath.Join(t.TempDir(), "missing.xlsx"))

	rec := httptest.NewRecorder()
	h.ImportPriceList(rec, httptest.NewRequest(http.MethodPost, "/api/upload-price", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "missing.xlsx")
	require.Len(t, store.items, 2, "catalog untouched when the file is missing")

	bad := writeWorkbook(t, t.TempDir(), [][]interface{}{{"title", "price"}, {"x", "?"}})
	h = NewHandler(store, bad)
	rec = httptest.NewRecorder()
	h.ImportPriceList(rec, httptest.NewRequest(http.MethodPost, "/api/upload-price", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, store.items, 2, "catalog untouched when a row is invalid")
}

func TestListAndCreate(t *testing.T) {
	store := &memProducts{}
	h := NewHandler(store, "")

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Pipe","price":10,"color":"red"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Pipe", created["title"])
	assert.Equal(t, "/placeholder.jpg", created["image"])
	assert.Equal(t, "", created["description"])
	assert.NotContains(t, created, "color")

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"price":10}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Server error"}`, rec.Body.String())
}

func TestCreateAcceptsNumericStringPrice(t *testing.T) {
	store := &memProducts{}
	h := NewHandler(store, "")

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Pipe","price":"120"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.items, 1)
	require.NotNil(t, store.items[0].Price)
	assert.InDelta(t, 120, *store.items[0].Price, 0.0001)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.EqualValues(t, 120, created["price"])

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products",
		strings.NewReader(`{"title":"Pipe","price":"call us"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, store.items, 1)
}

func TestListAndCreateStoreErrors(t *testing.T) {
	store := &memProducts{listErr: errors.New("down"), createErr: errors.New("down")}
	h := NewHandler(store, "")

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"title":"x"}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
