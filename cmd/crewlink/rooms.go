package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"crewlink/internal/directory"
	"crewlink/internal/game"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type roomLister interface {
	List(ctx context.Context) ([]directory.Entry, error)
}

func roomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List the rooms currently open on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			entries, err := a.directory().List(cmd.Context())
			if err != nil {
				return err
			}
			return printRooms(cmd.OutOrStdout(), entries)
		},
	}
}

func printRooms(w io.Writer, entries []directory.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No open rooms. Join any code to create one.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tPLAYERS")
	for _, e := range entries {
		r := e.Room()
		fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Code, r.Name, e.Count)
	}
	return tw.Flush()
}

// resolveRoom turns the --room value into a room. A "CODE|Name" choice is
// taken as-is; otherwise the directory is consulted, and a value it does
// not know becomes a custom room. With no value the first listed room is
// used, or the default room when the directory is empty or unreachable.
func resolveRoom(ctx context.Context, ref string, dir roomLister, log *zap.Logger) (game.Room, error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "|") {
		return game.ParseRoomChoice(ref)
	}

	entries, err := dir.List(ctx)
	if err != nil {
		log.Warn("room directory unavailable", zap.Error(err))
	}

	if ref == "" {
		if len(entries) > 0 {
			return entries[0].Room(), nil
		}
		return game.DefaultRoom, nil
	}

	e, err := directory.Find(entries, ref)
	if errors.Is(err, directory.ErrNoRoom) {
		return game.CustomRoom(ref), nil
	}
	if err != nil {
		return game.Room{}, err
	}
	return e.Room(), nil
}
