package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"crewlink/internal/conn"
	"crewlink/internal/console"
	"crewlink/internal/game"
	"crewlink/internal/intent"
	"crewlink/internal/render"
	"crewlink/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func joinCmd() *cobra.Command {
	var dumpPath string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a room and play from the terminal",
		Example: `  crewlink join --name Nova
  crewlink join --name Nova --room B2
  crewlink join --name Nova --room "B2|Polus" --dump-state state.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.join(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), dumpPath)
		},
	}

	cmd.Flags().String("name", "", "display name (env PLAYER_NAME)")
	cmd.Flags().String("room", "", `room code, name or "CODE|Name" (env ROOM)`)
	cmd.Flags().StringVar(&dumpPath, "dump-state", "", "write the final room state as YAML to this file")

	return cmd
}

func (a *app) join(ctx context.Context, in io.Reader, out io.Writer, dumpPath string) error {
	a.serveMetrics(ctx)

	room, err := resolveRoom(ctx, a.cfg.Client.Room, a.directory(), a.log)
	if err != nil {
		return err
	}

	mgrCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := render.New(out)
	st := store.New()
	defer r.Attach(st)()

	m := conn.NewManager(mgrCtx, conn.Options{
		ServerURL: a.base,
		Dialer: conn.NewWSDialer(conn.Origin(a.base),
			a.cfg.Client.HandshakeTimeout, a.cfg.Client.WriteTimeout, a.cfg.Client.ReadLimit),
		Store:         st,
		Logger:        a.log.Named("conn"),
		Metrics:       a.metrics,
		ChatRateLimit: a.cfg.Client.ChatRateLimit,
		ChatRateBurst: a.cfg.Client.ChatRateBurst,
	})
	m.OnStateChange(func(s conn.State) { r.ConnectionState(s) })

	if err := m.Join(ctx, a.cfg.Client.Name, room); err != nil {
		if errors.Is(err, game.ErrNameRequired) || errors.Is(err, game.ErrRoomRequired) ||
			errors.Is(err, conn.ErrManagerStopped) {
			return err
		}
		// a failed dial still leaves an offline session to type into
		a.log.Warn("join failed", zap.Error(err))
	}

	lines := make(chan string)
	go scanLines(mgrCtx, in, lines)

	runConsole(ctx, m, r, lines)

	if err := m.Leave(context.Background()); err != nil && !errors.Is(err, conn.ErrManagerStopped) {
		a.log.Debug("leave", zap.Error(err))
	}
	cancel()
	<-m.Done()

	if dumpPath != "" {
		return dumpState(dumpPath, st.View())
	}
	return nil
}

// session is the part of the manager the console drives
type session interface {
	Chat(ctx context.Context, text string) (intent.Outcome, error)
	Vote(ctx context.Context, target string) (intent.Outcome, error)
	Kill(ctx context.Context, target string) (intent.Outcome, error)
	Act(ctx context.Context, target string) (intent.Outcome, error)
	Store() *store.Store
}

// runConsole handles input lines until /quit, end of input or ctx is done
func runConsole(ctx context.Context, s session, r *render.Renderer, lines <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !dispatch(ctx, s, r, line) {
				return
			}
		}
	}
}

// dispatch runs one input line and reports whether to keep going
func dispatch(ctx context.Context, s session, r *render.Renderer, line string) bool {
	cmd, err := console.Parse(line)
	if err != nil {
		r.Line("%v (try /help)", err)
		return true
	}

	var act func(context.Context, string) (intent.Outcome, error)
	switch cmd.Kind {
	case console.Empty:
		return true
	case console.Quit:
		return false
	case console.Help:
		r.Line("%s", console.Usage)
		return true
	case console.Who:
		r.Roster(s.Store().View())
		return true
	case console.Chat:
		act = s.Chat
	case console.Vote:
		act = s.Vote
	case console.Kill:
		act = s.Kill
	case console.Act:
		act = s.Act
	default:
		return true
	}

	arg := cmd.Arg
	if cmd.Kind != console.Chat {
		if p, ok := s.Store().View().FindTarget(arg); ok && p.TargetRef() != "" {
			arg = p.TargetRef()
		}
	}

	if _, err := act(ctx, arg); err != nil && !errors.Is(err, context.Canceled) {
		r.Line("%v", err)
		return !errors.Is(err, conn.ErrManagerStopped)
	}
	return true
}

func scanLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

func dumpState(path string, v store.View) error {
	data, err := v.YAML()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
