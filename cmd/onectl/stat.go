package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/joshuapare/onekit/pkg/onenote"
	"github.com/joshuapare/onekit/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatCmd())
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <file.one>",
		Short: "Show summary statistics about a section file",
		Long: `The stat command reports the file size, the number of decoded object
spaces and revisions, and the size of the content tree.

Example:
  onectl stat Section1.one
  onectl stat Section1.one --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd.Context(), args)
		},
	}
}

type sectionStats struct {
	Path           string `json:"path"`
	SizeBytes      int64  `json:"sizeBytes"`
	ObjectSpaces   int    `json:"objectSpaces"`
	Revisions      int    `json:"revisions"`
	ContentObjects int    `json:"contentObjects"`
}

func runStat(ctx context.Context, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	doc, rev, err := openDocument(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	root, err := doc.RootObject(ctx, rev, types.RoleContents, 0)
	if err != nil {
		return fmt.Errorf("failed to build content tree: %w", err)
	}

	stats := sectionStats{
		Path:           path,
		SizeBytes:      info.Size(),
		ObjectSpaces:   len(doc.ObjectSpaces()),
		Revisions:      len(doc.ObjectSpaces()[doc.RootObjectSpaceID()].Revisions),
		ContentObjects: countNodes(root),
	}

	if jsonOut {
		return printJSON(stats)
	}

	printInfo("File:            %s\n", stats.Path)
	printInfo("Size:            %s (%s)\n", humanize.Bytes(uint64(stats.SizeBytes)), humanize.Comma(stats.SizeBytes))
	printInfo("Object spaces:   %d\n", stats.ObjectSpaces)
	printInfo("Revisions:       %d\n", stats.Revisions)
	printInfo("Content objects: %d\n", stats.ContentObjects)
	return nil
}

func countNodes(n *onenote.Node) int {
	count := 1
	for _, c := range n.Children {
		count += countNodes(c)
	}
	return count
}
