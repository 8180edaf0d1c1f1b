package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/modrules/internal/adapters/render" //nolint:depguard // Format names only
	"go.trai.ch/modrules/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [platforms...]",
		Short: "Emit build descriptors for the given platforms (defaults to the host)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			pluginDir, _ := cmd.Flags().GetString("plugin-dir")
			format, _ := cmd.Flags().GetString("format")
			verify, _ := cmd.Flags().GetBool("verify")
			allowUnsupported, _ := cmd.Flags().GetBool("allow-unsupported")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.ResolveOptions{
				ConfigPath:       configPath,
				PluginDir:        pluginDir,
				Platforms:        args,
				All:              all,
				Format:           format,
				Verify:           verify,
				AllowUnsupported: allowUnsupported,
				Output:           cmd.OutOrStdout(),
			}
			if cmd.Flags().Changed("alt-arch") {
				altArch, _ := cmd.Flags().GetBool("alt-arch")
				opts.PreferAltArch = &altArch
			}
			return c.app.Resolve(cmd.Context(), opts)
		},
	}
	cmd.Flags().String("plugin-dir", "", "Plugin directory relative roots are anchored on")
	cmd.Flags().Bool("alt-arch", false, "Prefer the alternate architecture where the platform has one")
	cmd.Flags().StringP("format", "f", render.FormatYAML, "Output format (yaml, json, flags)")
	cmd.Flags().Bool("verify", false, "Fail when a linked artifact does not exist on disk")
	cmd.Flags().Bool("allow-unsupported", false, "Emit unsupported platforms with a warning instead of failing")
	cmd.Flags().BoolP("all", "a", false, "Resolve every descriptor of every supported platform")
	cmd.MarkFlagsMutuallyExclusive("all", "alt-arch")
	return cmd
}
