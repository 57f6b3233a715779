package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/danmaku/internal/live"
	"github.com/user/danmaku/internal/recorder"
)

var tailLimit int

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().IntVarP(&tailLimit, "limit", "n", 20, "number of events to show")
}

var tailCmd = &cobra.Command{
	Use:   "tail [room]",
	Short: "Show the last recorded events for a room",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		roomInput := cfg.Room.ID
		if len(args) > 0 {
			roomInput = args[0]
		}
		room, err := live.ParseRoomID(roomInput)
		if err != nil {
			return err
		}

		events, err := recorder.New(cfg.Record.Dir).Tail(room, tailLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(os.Stdout, "no recorded events")
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(os.Stdout, "%s %s\n", ev.At.Format("2006-01-02 15:04:05"), ev.Line())
		}
		return nil
	},
}
