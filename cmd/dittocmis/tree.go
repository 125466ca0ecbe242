package main

import (
	"fmt"
	"strings"

	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/spf13/cobra"
)

var (
	treeDepth   int64
	treeFolders bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print the folder hierarchy of the repository",
	Long: `Print the objects below a folder, one per line, indented by depth.

The path is relative to the repository root and defaults to "/". Documents
are followed by their content length. With --folders only folders are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = args[0]
		}

		reg, repo, cc, err := openRepository(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = reg.Close() }()

		ctx := cmd.Context()
		root, err := repo.GetObjectByPath(ctx, cc, path, repository.ObjectOptions{})
		if err != nil {
			return err
		}
		if root.Properties.Value(cmis.PropBaseTypeID) != string(cmis.BaseTypeFolder) {
			return fmt.Errorf("%s is not a folder", path)
		}

		opts := repository.DescendantsOptions{IncludePathSegment: true}
		var nodes []cmis.ObjectInFolderContainer
		if treeFolders {
			nodes, err = repo.GetFolderTree(ctx, cc, root.ID(), treeDepth, opts)
		} else {
			nodes, err = repo.GetDescendants(ctx, cc, root.ID(), treeDepth, opts)
		}
		if err != nil {
			return err
		}

		cmd.Println(path)
		printTree(cmd, nodes, 1)
		return nil
	},
}

func init() {
	treeCmd.Flags().Int64VarP(&treeDepth, "depth", "d", -1, "levels to descend, -1 for all")
	treeCmd.Flags().BoolVar(&treeFolders, "folders", false, "show folders only")
	addCredentialFlags(treeCmd)
	rootCmd.AddCommand(treeCmd)
}

func printTree(cmd *cobra.Command, nodes []cmis.ObjectInFolderContainer, level int) {
	indent := strings.Repeat("  ", level)
	for _, n := range nodes {
		obj := n.Object.Object
		name := n.Object.PathSegment
		if name == "" {
			name, _ = obj.Properties.Value(cmis.PropName).(string)
		}

		if obj.Properties.Value(cmis.PropBaseTypeID) == string(cmis.BaseTypeFolder) {
			cmd.Printf("%s%s/\n", indent, name)
		} else if size, ok := obj.Properties.Value(cmis.PropContentStreamLength).(int64); ok {
			cmd.Printf("%s%s (%d bytes)\n", indent, name, size)
		} else {
			cmd.Printf("%s%s\n", indent, name)
		}

		printTree(cmd, n.Children, level+1)
	}
}
