package collection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/schema"
)

// Side files persisted next to the index directory.
const (
	schemaFileName = "schema.json"
	metaFileName   = "metadata.json"
	indexDirName   = "index"
)

type schemaDTO struct {
	Name       string     `json:"name"`
	Fields     []fieldDTO `json:"fields"`
	PrimaryKey string     `json:"primary_key,omitempty"`
}

type fieldDTO struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Stored    bool   `json:"stored"`
	Indexed   bool   `json:"indexed"`
	Fast      bool   `json:"fast,omitempty"`
	Tokenizer string `json:"tokenizer,omitempty"`
}

type metaDTO struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func saveSchema(dir string, def schema.Definition) error {
	dto := schemaDTO{
		Name:       def.Name(),
		Fields:     make([]fieldDTO, 0, len(def.Fields())),
		PrimaryKey: def.PrimaryKey(),
	}
	for _, f := range def.Fields() {
		dto.Fields = append(dto.Fields, fieldDTO{
			Name:      f.Name(),
			Type:      string(f.Kind()),
			Stored:    f.Stored(),
			Indexed:   f.Indexed(),
			Fast:      f.Fast(),
			Tokenizer: f.Tokenizer(),
		})
	}
	return writeJSONFile(filepath.Join(dir, schemaFileName), dto)
}

func loadSchema(dir string) (schema.Definition, error) {
	var dto schemaDTO
	if err := readJSONFile(filepath.Join(dir, schemaFileName), &dto); err != nil {
		return schema.Definition{}, fmt.Errorf("%w: load schema: %v", domain.ErrSchema, err)
	}
	fields := make([]schema.Field, 0, len(dto.Fields))
	for _, f := range dto.Fields {
		fields = append(fields, schema.Reconstruct(f.Name, schema.Kind(f.Type), schema.Options{
			Stored:    f.Stored,
			Indexed:   f.Indexed,
			Fast:      f.Fast,
			Tokenizer: f.Tokenizer,
		}))
	}
	return schema.ReconstructDefinition(dto.Name, fields, dto.PrimaryKey), nil
}

func saveMeta(dir string, createdAt, updatedAt time.Time) error {
	return writeJSONFile(filepath.Join(dir, metaFileName), metaDTO{
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	})
}

func loadMeta(dir string) (metaDTO, error) {
	var dto metaDTO
	if err := readJSONFile(filepath.Join(dir, metaFileName), &dto); err != nil {
		return metaDTO{}, err
	}
	return dto, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
