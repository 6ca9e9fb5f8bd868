package fakeapi

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hongminglow/storefront/internal/models/dto"
)

//go:embed seed/menu.yaml
var defaultMenu []byte

// LoadMenu reads a catalog seed from path, or the built-in seed when path
// is empty.
func LoadMenu(path string) ([]dto.MenuCategoryRecord, error) {
	raw := defaultMenu
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read menu seed: %w", err)
		}
		raw = data
	}
	return ParseMenu(raw)
}

// ParseMenu decodes a YAML catalog and checks that item ids are unique.
func ParseMenu(raw []byte) ([]dto.MenuCategoryRecord, error) {
	var menu []dto.MenuCategoryRecord
	if err := yaml.Unmarshal(raw, &menu); err != nil {
		return nil, fmt.Errorf("parse menu seed: %w", err)
	}
	seen := make(map[int64]string)
	for _, category := range menu {
		if strings.TrimSpace(category.Item) == "" {
			return nil, fmt.Errorf("menu seed: category %d has no name", category.ID)
		}
		for _, item := range category.Children {
			if prev, ok := seen[item.ID]; ok {
				return nil, fmt.Errorf("menu seed: item id %d used by %q and %q", item.ID, prev, item.Item)
			}
			seen[item.ID] = item.Item
		}
	}
	return menu, nil
}
