// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

var csvHeader = []string{
	"osd_id", "device", "slot_id", "scsi_address", "controller", "model", "serial",
	"size", "smart_health", "status", "systemd", "commit_latency_ms",
	"apply_latency_ms", "temperature_c", "reallocated_sectors", "pending_sectors", "age",
}

func csvRecord(row Row) []string {
	return []string{
		row.OSDID, row.Device, strconv.Itoa(row.SlotID), row.SCSIAddress, row.Controller,
		row.Model, row.Serial, row.Size, row.SmartHealth, row.Status, row.Systemd,
		row.CommitMS, row.ApplyMS, row.TemperatureC, row.Realloc, row.Pending, row.Age,
	}
}

// WriteCSV writes one record per drive to w.
func WriteCSV(w io.Writer, result *scanner.ScanResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range BuildRows(result) {
		if err := writer.Write(csvRecord(row)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCSV writes the CSV report to the named file. An empty filename
// derives one from the scan timestamp.
func ExportCSV(filename string, result *scanner.ScanResult) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("osd_status_%s.csv", result.Timestamp.Format("20060102_150405"))
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, result); err != nil {
		return "", fmt.Errorf("error writing CSV: %w", err)
	}

	log.Info().Str("file", filename).Msg("exported CSV report")
	return filename, nil
}
