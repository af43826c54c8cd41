package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/joshuapare/onekit/pkg/onenote"
	"github.com/joshuapare/onekit/store"
	"github.com/spf13/cobra"
)

var historyIncremental bool

func init() {
	cmd := newHistoryCmd()
	cmd.Flags().
		BoolVar(&historyIncremental, "incremental", false, "Show only the directory entries that changed from the previous snapshot")
	rootCmd.AddCommand(cmd)
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <file.one>",
		Short: "Reconstruct the section's version-history snapshot sequence",
		Long: `The history command walks every page's revisions in timestamp order and
collapses them into snapshots, each naming the revision directory in effect
at that point in time.

Example:
  onectl history Section1.one
  onectl history Section1.one --incremental
  onectl history Section1.one --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(args)
		},
	}
}

func runHistory(args []string) error {
	path := args[0]
	printVerbose("Opening %s\n", path)

	doc, err := onenote.Open(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	snapshots, err := doc.VersionHistory()
	if err != nil {
		return fmt.Errorf("failed to build version history: %w", err)
	}

	if jsonOut {
		return printJSON(snapshots)
	}

	var prev map[string]store.ExtendedGUID
	for i, snap := range snapshots {
		printInfo("Snapshot %d — %s by %s (%s)\n",
			i, snap.LastModifiedTimeStamp.Format("2006-01-02 15:04:05"), snap.Author,
			humanize.Time(snap.LastModifiedTimeStamp))

		for guid, rid := range snap.Directory {
			if historyIncremental && prev != nil && prev[guid] == rid {
				continue
			}
			printInfo("  %s -> revision %s\n", guid, rid)
		}
		prev = snap.Directory
	}
	return nil
}
