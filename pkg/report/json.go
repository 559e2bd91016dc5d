// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

// jsonExport is the export document: the flattened drive rows plus the
// health judgement, under the scan identity.
type jsonExport struct {
	ScanID    string               `json:"scan_id"`
	Timestamp time.Time            `json:"timestamp"`
	Hostname  string               `json:"hostname"`
	Drives    []Row                `json:"drives"`
	Health    scanner.HealthReport `json:"health"`
}

// WriteJSON writes the JSON report document to w.
func WriteJSON(w io.Writer, result *scanner.ScanResult) error {
	doc := jsonExport{
		ScanID:    result.ScanID,
		Timestamp: result.Timestamp,
		Hostname:  result.Hostname,
		Drives:    BuildRows(result),
		Health:    result.Health,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ExportJSON writes the JSON report to the named file. An empty filename
// derives one from the scan timestamp.
func ExportJSON(filename string, result *scanner.ScanResult) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("osd_status_%s.json", result.Timestamp.Format("20060102_150405"))
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, result); err != nil {
		return "", fmt.Errorf("error writing JSON: %w", err)
	}

	log.Info().Str("file", filename).Msg("exported JSON report")
	return filename, nil
}
