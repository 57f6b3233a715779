package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/danmaku/internal/live"
	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/recorder"
	"github.com/user/danmaku/internal/sink"
	"github.com/user/danmaku/internal/telegram"
	"github.com/user/danmaku/internal/wsserver"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [room]",
	Short: "Watch a live room and print its events",
	Long: "Watch connects to the room's comment and notification feeds and " +
		"prints one line per event. The room id or URL may be given as an " +
		"argument or in the config file; the feed topic and session cookies " +
		"must be supplied via config or environment.",
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	roomInput := cfg.Room.ID
	if len(args) > 0 {
		roomInput = args[0]
	}
	room, err := live.ParseRoomID(roomInput)
	if err != nil {
		return err
	}

	out := sink.NewFanout()
	out.Register("stdout", sink.NewLineWriter(os.Stdout))

	if cfg.Record.Enabled {
		out.Register("recorder", recorder.New(cfg.Record.Dir))
		slog.Info("recording enabled", "dir", cfg.Record.Dir)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.HTTP.Enabled {
		broadcaster := wsserver.NewBroadcaster(50)
		out.Register("ws", broadcaster)

		mux := http.NewServeMux()
		wsserver.NewServer(broadcaster, cfg.HTTP.Token).SetupRoutes(mux)
		httpServer := &http.Server{Addr: cfg.HTTP.Listen, Handler: mux}
		go func() {
			slog.Info("ws server started", "listen", cfg.HTTP.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("ws server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		forwarder, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.Kinds)
		if err != nil {
			return fmt.Errorf("create telegram forwarder: %w", err)
		}
		out.Register("telegram", forwarder)
		slog.Info("telegram forwarding enabled", "chat_id", cfg.Telegram.ChatID, "kinds", cfg.Telegram.Kinds)
	}

	boot := live.StaticBootstrapper{
		Topic: cfg.Room.Topic,
		Credentials: mtop.Credentials{
			Token:    cfg.Cookies.MH5Tk,
			TokenEnc: cfg.Cookies.MH5TkEnc,
		},
	}

	supervisor := live.NewSupervisor(room, boot, out, live.Options{})

	slog.Info("watching room", "room", string(room))
	err = supervisor.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("stopped")
	return nil
}
