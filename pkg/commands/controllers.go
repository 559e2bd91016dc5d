// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cobaltcore-dev/osdscan/pkg/scanner"
)

var controllersCmd = &cobra.Command{
	Use:   "controllers",
	Short: "Detect RAID controllers and JBOD enclosures without a full scan",
	Long:  "Probes the /dev/sg* range for accessible controllers and tests passthrough access on each, as a quick check before running a full scan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := scanner.CheckPreconditions(); err != nil {
			return err
		}

		cfg := scanner.DefaultConfig()
		prober := scanner.NewProber(cfg)
		controllers := scanner.DiscoverControllers(cmd.Context(), cfg, prober)

		fmt.Fprintf(os.Stdout, "Detected %d controller(s):\n\n", len(controllers))
		for _, ctrl := range controllers {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", ctrl.DevicePath, ctrl.DisplayType)
			fmt.Fprintf(os.Stdout, "    model:  %s\n", ctrl.Model)
			if ctrl.Serial != "" {
				fmt.Fprintf(os.Stdout, "    serial: %s\n", ctrl.Serial)
			}

			switch ctrl.Kind {
			case scanner.KindPassthrough:
				// Slot 0 answering proves the passthrough path works even
				// when that particular slot is empty on some chassis.
				if info := prober.SmartPassthrough(cmd.Context(), ctrl.DevicePath, 0); info != nil {
					fmt.Fprintf(os.Stdout, "    passthrough: responding (slot 0)\n")
				} else {
					fmt.Fprintf(os.Stdout, "    passthrough: no response on slot 0; drives may sit in higher slots\n")
				}
			case scanner.KindExpander:
				fmt.Fprintf(os.Stdout, "    drives enumerate as native SCSI targets\n")
			}
			fmt.Fprintln(os.Stdout)
		}

		if len(controllers) == 1 && controllers[0].DevicePath == cfg.FallbackControllerDevice && controllers[0].Serial == "" {
			fmt.Fprintln(os.Stdout, "No controller answered the identity probe; the scan will fall back to", cfg.FallbackControllerDevice)
			fmt.Fprintln(os.Stdout, "Check: ls -l /dev/sg*  and  smartctl --scan")
		}
		return nil
	},
}
