package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"veggi-storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductWriter creates catalog products through the admin API.
type ProductWriter interface {
	CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
}

// CSVImporter reads a catalog CSV and creates one product per row group.
// A row with only an image column adds that image to the product above it.
type CSVImporter struct {
	reader *csv.Reader
	writer ProductWriter
	token  string
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, writer ProductWriter, token string, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader: csvr,
		writer: writer,
		token:  token,
		logger: logger,
	}
}

type csvRow struct {
	line      int
	Name      string
	Price     string
	Desc      string
	Category  string
	UnitType  string
	Stock     string
	Freshness string
	Origin    string
	Seller    string
	Images    []string
}

// Run parses CSV rows and creates the products they describe.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("read headers: missing name column")
	}

	var (
		current  *csvRow
		imported int
	)

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.Images) > 0 {
			current.Images = append(current.Images, row.Images...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	in, err := row.toInput()
	if err != nil {
		return fmt.Errorf("line %d: %w", row.line, err)
	}
	p, err := i.writer.CreateProduct(ctx, i.token, in)
	if err != nil {
		return fmt.Errorf("create product %q: %w", row.Name, err)
	}
	i.logger.Info("product imported", zap.String("id", p.ID), zap.String("name", p.Name), zap.Int("images", len(in.Images)))
	return nil
}

func (r *csvRow) toInput() (domain.ProductInput, error) {
	if r.Seller == "" {
		return domain.ProductInput{}, fmt.Errorf("product %q has no seller", r.Name)
	}
	if len(r.Images) == 0 {
		return domain.ProductInput{}, fmt.Errorf("product %q has no image", r.Name)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil || price.IsNegative() {
		return domain.ProductInput{}, fmt.Errorf("product %q has invalid price %q", r.Name, r.Price)
	}
	stock := 0
	if r.Stock != "" {
		stock, err = strconv.Atoi(r.Stock)
		if err != nil || stock < 0 {
			return domain.ProductInput{}, fmt.Errorf("product %q has invalid stock %q", r.Name, r.Stock)
		}
	}
	images := make([]domain.ProductImage, 0, len(r.Images))
	for _, url := range r.Images {
		images = append(images, domain.ProductImage{Image: url})
	}
	return domain.ProductInput{
		Name:        r.Name,
		Price:       price,
		Description: r.Desc,
		Category:    r.Category,
		UnitType:    r.UnitType,
		Stock:       stock,
		Freshness:   r.Freshness,
		Origin:      r.Origin,
		Seller:      r.Seller,
		Images:      images,
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	image := pick(record, index, "image")
	if name == "" && image == "" {
		return nil
	}

	row := &csvRow{
		Name:      name,
		Price:     pick(record, index, "price"),
		Desc:      pick(record, index, "description"),
		Category:  pick(record, index, "category"),
		UnitType:  pick(record, index, "unitType"),
		Stock:     pick(record, index, "stock"),
		Freshness: pick(record, index, "freshness"),
		Origin:    pick(record, index, "origin"),
		Seller:    pick(record, index, "seller"),
	}
	if image != "" {
		row.Images = []string{image}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
