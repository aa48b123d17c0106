// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gviegas/rendercore/driver"
	"github.com/gviegas/rendercore/engine"
)

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the registered drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, drv := range driver.Drivers() {
				cfg := engine.DefaultConfig()
				cfg.Driver = drv.Name()
				dev, err := engine.NewDevice(&cfg)
				if err != nil {
					fmt.Fprintf(w, "%s\tunavailable (%v)\n", drv.Name(), err)
					continue
				}
				info := dev.Adapter()
				kind := "hardware"
				if info.Software {
					kind = "software"
				}
				fmt.Fprintf(w, "%s\t%s (%s, %04x:%04x, %d MiB)\n",
					drv.Name(), info.Name, kind, info.VendorID, info.DeviceID, info.VideoMemory>>20)
				dev.Free()
			}
			return nil
		},
	}
}
