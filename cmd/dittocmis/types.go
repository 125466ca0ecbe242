package main

import (
	"strings"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/spf13/cobra"
)

var typesProperties bool

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Print the type hierarchy",
	Long: `Print every object type the repository exposes, children indented under
their parent. With --properties each type lists its property definitions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, repo, cc, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = reg.Close() }()

		tree, err := repo.GetTypeDescendants(cmd.Context(), cc, "", -1, typesProperties)
		if err != nil {
			return err
		}
		printTypes(cmd, tree, 0)
		return nil
	},
}

func init() {
	typesCmd.Flags().BoolVar(&typesProperties, "properties", false, "list property definitions")
	addCredentialFlags(typesCmd)
	rootCmd.AddCommand(typesCmd)
}

func printTypes(cmd *cobra.Command, nodes []cmis.TypeDefinitionContainer, level int) {
	indent := strings.Repeat("  ", level)
	for _, n := range nodes {
		cmd.Printf("%s%s (%s)\n", indent, n.Type.ID, n.Type.DisplayName)
		if typesProperties {
			for _, id := range n.Type.PropertyIDs() {
				def := n.Type.PropertyDefinitions[id]
				cmd.Printf("%s  - %s %s\n", indent, id, def.Type)
			}
		}
		printTypes(cmd, n.Children, level+1)
	}
}
