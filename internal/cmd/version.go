package cmd

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

const version = "0.2.0-alpha"

var minVersion string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of xdrtrace",
	Long: `Print the version number of xdrtrace.

With --min, exit with an error when this build is older than the given
version; useful for scripts that depend on a decoder feature.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := Version()
		fmt.Fprintf(cmd.OutOrStdout(), "xdrtrace version %s\n", current)

		if minVersion == "" {
			return nil
		}
		return checkMinVersion(current, minVersion)
	},
}

func init() {
	versionCmd.Flags().StringVar(&minVersion, "min", "", "Minimum required version")
}

// Version returns the build version.
func Version() *goversion.Version {
	return goversion.Must(goversion.NewVersion(version))
}

func checkMinVersion(current *goversion.Version, min string) error {
	required, err := goversion.NewVersion(min)
	if err != nil {
		return fmt.Errorf("invalid --min version %q: %w", min, err)
	}
	if current.LessThan(required) {
		return fmt.Errorf("xdrtrace %s is older than required %s", current, required)
	}
	return nil
}
