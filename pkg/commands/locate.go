// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/osdscan/pkg/locate"
	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

var locateCmd = &cobra.Command{
	Use:   "locate on|off <device|osd.N> | locate list",
	Short: "Blink the locate LED on a drive",
	Long:  "Turns the locate LED of a physical drive on or off so it can be found in the chassis. The target is a block device (sda, /dev/sda) or an OSD reference (osd.42), resolved through the cluster's OSD metadata. 'locate list' shows all drives with their devices and slots.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "list" {
			return runLocateList(cmd)
		}

		action := args[0]
		if action != "on" && action != "off" {
			return fmt.Errorf("action must be 'on', 'off' or 'list', got %q", action)
		}
		if len(args) < 2 {
			return fmt.Errorf("missing device argument")
		}

		l := locate.New()
		for _, pkg := range l.CheckDependencies() {
			fmt.Fprintf(os.Stderr, "warning: missing %s\n", pkg)
		}

		device, err := l.ResolveTarget(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		if err := l.SetLED(cmd.Context(), device, action == "on"); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "LED %s for %s\n", action, device)
		return nil
	},
}

// runLocateList scans the node and prints a compact per-drive listing so
// the admin can pick a locate target.
func runLocateList(cmd *cobra.Command) error {
	if err := scanner.CheckPreconditions(); err != nil {
		return err
	}

	cfg := scanner.DefaultConfig()
	result, err := scanner.New(cfg, scanner.NewProber(cfg)).Scan(cmd.Context(), nil)
	if err != nil {
		return err
	}

	type line struct {
		device, osd, serial, model, slot string
	}
	lines := make([]line, 0, len(result.Drives))
	for _, drive := range result.Drives {
		device := "NOT MAPPED"
		if drive.OSDeviceName != "" {
			device = "/dev/" + drive.OSDeviceName
		}
		osd := "-"
		if id := result.OSDForDrive(drive.Serial); id != "" {
			osd = "osd." + id
		}
		lines = append(lines, line{
			device: device,
			osd:    osd,
			serial: drive.Serial,
			model:  drive.Model,
			slot:   fmt.Sprintf("%s slot %d", drive.ControllerType, drive.SlotID),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].device < lines[j].device })

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tOSD\tSERIAL\tMODEL\tBAY")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.device, l.osd, l.serial, l.model, l.slot)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "\nTo locate a drive:  osdscan locate on /dev/sda   or   osdscan locate on osd.42")
	return nil
}
