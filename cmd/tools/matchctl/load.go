// cmd/tools/matchctl/load.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"renovation-matching/internal/models"
)

// rankRequest is the file read by `matchctl rank --project`. A bare project
// document is accepted too.
type rankRequest struct {
	Project  models.Project           `json:"project"`
	Criteria *models.MatchingCriteria `json:"criteria,omitempty"`
}

// readDocument returns the JSON form of a JSON or YAML file. YAML goes through
// JSON so the models' json tags and custom unmarshalers apply to both formats.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
	}
	return data, nil
}

func decodeFile(path string, out interface{}) error {
	data, err := readDocument(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func loadRankRequest(path string) (*rankRequest, error) {
	var req rankRequest
	if err := decodeFile(path, &req); err != nil {
		return nil, err
	}
	if req.Project.ID == "" {
		var p models.Project
		if err := decodeFile(path, &p); err != nil {
			return nil, err
		}
		req.Project = p
	}
	if req.Project.ID == "" {
		return nil, fmt.Errorf("%s: project id is required", path)
	}
	return &req, nil
}

// loadCompanies accepts either a list of companies or {"companies": [...]}.
func loadCompanies(path string) ([]models.Company, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%s: empty company roster", path)
	}
	switch trimmed[0] {
	case '[':
		var list []models.Company
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return list, nil
	case '{':
		var wrapped struct {
			Companies []models.Company `json:"companies"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return wrapped.Companies, nil
	default:
		return nil, fmt.Errorf("%s: expected a list of companies or an object with a companies field", path)
	}
}
