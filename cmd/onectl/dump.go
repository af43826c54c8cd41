package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/joshuapare/onekit/pkg/onenote"
	"github.com/joshuapare/onekit/pkg/types"
	"github.com/spf13/cobra"
)

var dumpOIDs bool

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpOIDs, "oids", false, "Include each property's raw object/context ID streams")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file.one>",
		Short: "Human-readable dump of every decoded property",
		Long: `The dump command prints every node in the content tree along with its
full decoded property set.

Example:
  onectl dump Section1.one
  onectl dump Section1.one --oids
  onectl dump Section1.one --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args)
		},
	}
	return cmd
}

func runDump(ctx context.Context, args []string) error {
	path := args[0]
	printVerbose("Opening %s\n", path)

	doc, rev, err := openDocument(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	root, err := doc.RootObject(ctx, rev, types.RoleContents, 0)
	if err != nil {
		return fmt.Errorf("failed to build content tree: %w", err)
	}

	if jsonOut {
		return printJSON(root)
	}

	dumpNode(root)
	return nil
}

func dumpNode(n *onenote.Node) {
	printInfo("[%s] oid=%s\n", n.SchemaName, n.OID)

	ids := make([]uint32, 0, len(n.Properties))
	for id := range n.Properties {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p := n.Properties[id]
		if dumpOIDs && (len(p.ObjectIDs) > 0 || len(p.ContextIDs) > 0) {
			printInfo("  0x%X: oids=%v ctxids=%v\n", id, p.ObjectIDs, p.ContextIDs)
			continue
		}
		printInfo("  0x%X: %v\n", id, p.Raw)
	}
	for _, run := range n.TextRuns {
		printInfo("  text: %q\n", run.Text)
	}
	printInfo("\n")

	for _, c := range n.Children {
		dumpNode(c)
	}
}
