package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/matst80/casa-finder/pkg/storage"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed property.schema.json
var propertySchemaJson string

const propertySchemaName = "property.schema.json"

var propertySchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(propertySchemaName, strings.NewReader(propertySchemaJson)); err != nil {
		panic(fmt.Sprintf("failed to add property schema: %v", err))
	}
	propertySchema = compiler.MustCompile(propertySchemaName)
}

// Validate checks a single raw catalog record against the property schema.
func Validate(raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("record is not valid json: %w", err)
	}
	return propertySchema.Validate(doc)
}

// Decode validates and converts raw records. Records failing validation are
// skipped and logged, the catalog keeps loading.
func Decode(records []json.RawMessage, logger *slog.Logger) ([]types.Property, error) {
	items := make([]types.Property, 0, len(records))
	for i, raw := range records {
		if err := Validate(raw); err != nil {
			logger.Warn("skipping invalid catalog record", "index", i, "error", err)
			continue
		}
		var p types.Property
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("catalog record %d: %w", i, err)
		}
		items = append(items, p)
	}
	return items, nil
}

// LoadFile loads a json array of properties, gzipped when the name ends with .gz.
func LoadFile(ds *storage.DiskStorage, name string, logger *slog.Logger) (*Catalog, error) {
	records := make([]json.RawMessage, 0)
	if err := ds.LoadAuto(&records, name); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", name, err)
	}
	items, err := Decode(records, logger)
	if err != nil {
		return nil, err
	}
	c, err := New(items)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded", "file", name, "records", len(records), "properties", c.Len())
	return c, nil
}
