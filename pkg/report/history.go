// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

var historyHeader = append([]string{"scan_id", "scan_time", "hostname"}, csvHeader...)

// AppendHistory appends one record per drive to the append-only history
// file, creating it with a header row on first use. Each record carries
// the scan ID and timestamp so successive scans can be compared.
func AppendHistory(filename string, result *scanner.ScanResult) error {
	_, statErr := os.Stat(filename)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening history file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	if newFile {
		if err := writer.Write(historyHeader); err != nil {
			return err
		}
	}

	timestamp := result.Timestamp.Format("2006-01-02 15:04:05")
	for _, row := range BuildRows(result) {
		record := append([]string{result.ScanID, timestamp, result.Hostname}, csvRecord(row)...)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	log.Info().Str("file", filename).Int("drives", len(result.Drives)).Msg("appended scan to history")
	return nil
}

// historyRecordCount is a small helper for tests and sanity checks: the
// number of data records currently in a history file.
func historyRecordCount(filename string) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return len(records) - 1, nil
}
