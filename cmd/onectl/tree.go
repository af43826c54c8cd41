package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshuapare/onekit/pkg/onenote"
	"github.com/joshuapare/onekit/pkg/types"
	"github.com/spf13/cobra"
)

var (
	treeDepth     int
	treeVerbosity int
)

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth (0 = unlimited)")
	cmd.Flags().
		IntVar(&treeVerbosity, "verbosity", 0, "Minimum display verbosity to include a node")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <file.one>",
		Short: "Display the typed object tree rooted at the page content",
		Long: `The tree command walks the content object tree from the default
context's root and prints each node's schema name and child count.

Example:
  onectl tree Section1.one
  onectl tree Section1.one --depth 2
  onectl tree Section1.one --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd.Context(), args)
		},
	}
	return cmd
}

func runTree(ctx context.Context, args []string) error {
	path := args[0]
	printVerbose("Opening %s\n", path)

	doc, rev, err := openDocument(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	root, err := doc.RootObject(ctx, rev, types.RoleContents, treeVerbosity)
	if err != nil {
		return fmt.Errorf("failed to build content tree: %w", err)
	}

	if jsonOut {
		return printJSON(root)
	}

	printNode(root, 0, treeDepth)
	return nil
}

func printNode(n *onenote.Node, depth, maxDepth int) {
	printInfo("%s%s  (oid=%s, %d children)\n", strings.Repeat("  ", depth), n.SchemaName, n.OID, len(n.Children))
	if maxDepth > 0 && depth+1 >= maxDepth {
		return
	}
	for _, c := range n.Children {
		printNode(c, depth+1, maxDepth)
	}
}
