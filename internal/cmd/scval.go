// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/xdrtrace/internal/scval"
)

var scvalCmd = &cobra.Command{
	Use:   "scval <base64-xdr>",
	Short: "Decode a single base64 ScVal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := scval.DecodeBase64(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return json.NewEncoder(out).Encode(scval.Native(v))
		}
		fmt.Fprintf(out, "%s %s\n", dimColor.Sprint(v.Kind()), v)
		return nil
	},
}
