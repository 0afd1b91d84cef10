// Command gameclient is the Pawnhall multiplayer client.
//
// It speaks the text-line registration protocol to the configured game
// servers and supports four modes:
//  1. "scan"  – run one servers-list status scan and print the result
//  2. "join"  – join a server, register, and relay chat/lobby/game events
//  3. "serve" – run the local HTTP gateway for a display layer
//  4. "mcp"   – run an MCP stdio server proxying to a gateway
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/pawnhall/gameclient/api"
	"github.com/pawnhall/gameclient/checkout"
	"github.com/pawnhall/gameclient/config"
	"github.com/pawnhall/gameclient/notify"
	"github.com/pawnhall/gameclient/protocol"
	"github.com/pawnhall/gameclient/service"
	"github.com/pawnhall/gameclient/session"
	"github.com/pawnhall/gameclient/transport/mcp"
	"github.com/pawnhall/gameclient/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pawnhall Game Client"
)

// notificationTTL is how long an error notification stays visible before it
// expires on its own.
const notificationTTL = 8 * time.Second

// core bundles the client's long-lived components.
type core struct {
	cfg      *config.Config
	machine  *session.Machine
	mux      *service.Mux
	chat     *service.Chat
	lobby    *service.Lobby
	minigame *service.Minigame
	status   *service.Status
	reporter *notify.Reporter
	workflow *checkout.Workflow
}

// buildCore wires the session machine, the sub-services and the checkout
// workflow for the given configuration.
func buildCore(cfg *config.Config) (*core, error) {
	machine := session.NewMachine()
	mux := service.NewMux(machine)

	chat, err := service.NewChat(mux)
	if err != nil {
		return nil, err
	}
	lobby, err := service.NewLobby(mux)
	if err != nil {
		return nil, err
	}
	minigame, err := service.NewMinigame(mux)
	if err != nil {
		return nil, err
	}
	status, err := service.NewStatus(mux)
	if err != nil {
		return nil, err
	}

	reporter := notify.NewReporter(notificationTTL)
	reporter.Attach(machine.Errors())
	reporter.Attach(mux.Errors())

	workflow := checkout.New(machine, status, cfg.Origin, websocket.Dial,
		checkout.WallClockDelay(cfg.CheckoutTimeout))

	return &core{
		cfg:      cfg,
		machine:  machine,
		mux:      mux,
		chat:     chat,
		lobby:    lobby,
		minigame: minigame,
		status:   status,
		reporter: reporter,
		workflow: workflow,
	}, nil
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}

func main() {
	// .env is optional; missing files are fine.
	_ = godotenv.Load()

	root := &cli.Command{
		Name:    "gameclient",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "servers-list configuration file",
				Sources: cli.EnvVars("GAMECLIENT_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			scanCommand(),
			joinCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "run one servers-list status scan and print the result",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := buildCore(cfg)
			if err != nil {
				return err
			}

			statuses, err := c.workflow.Scan(ctx, cfg.Servers)
			if err != nil {
				return err
			}

			fmt.Printf("%-16s %-10s %s\n", "SERVER", "GAME", "AVAILABILITY")
			for _, st := range statuses {
				availability := "-"
				if st.Availability != nil {
					availability = fmt.Sprintf("%d/%d", st.Availability.Current, st.Availability.Capacity)
				}
				fmt.Printf("%-16s %-10s %s\n", st.Name, config.KindName(st.Kind), availability)
			}
			return nil
		},
	}
}

func joinCommand() *cli.Command {
	return &cli.Command{
		Name:  "join",
		Usage: "join a configured server, register, and relay events",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Usage: "server name from the configuration", Required: true},
			&cli.StringFlag{Name: "name", Usage: "login name", Required: true},
			&cli.Uint64Flag{Name: "uid", Usage: "login uid (default: derived from the clock)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := buildCore(cfg)
			if err != nil {
				return err
			}

			var srv *config.Server
			for i := range cfg.Servers {
				if cfg.Servers[i].Name == cmd.String("server") {
					srv = &cfg.Servers[i]
					break
				}
			}
			if srv == nil {
				return fmt.Errorf("unknown server %q", cmd.String("server"))
			}

			uid := cmd.Uint64("uid")
			if uid == 0 {
				uid = uint64(time.Now().UnixNano())
			}

			return runJoin(ctx, c, srv, uid, cmd.String("name"))
		},
	}
}

// runJoin drives one interactive session: connect, register, print events,
// forward stdin lines to chat.
func runJoin(ctx context.Context, c *core, srv *config.Server, uid uint64, name string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoint, err := websocket.ResolveEndpoint(c.cfg.Origin.Scheme, c.cfg.Origin.Hostname, srv.Port)
	if err != nil {
		return err
	}
	log.Printf("connecting to %s (%s)", srv.Name, endpoint)

	subject, err := websocket.DialRetry(ctx, endpoint, 5)
	if err != nil {
		return err
	}
	if err := c.machine.BeginSession(subject); err != nil {
		subject.Close()
		return err
	}
	if err := c.machine.Register(uid, name); err != nil {
		return err
	}

	disconnected := make(chan struct{})
	cancelState := c.machine.States().Subscribe(func(s session.State) {
		log.Printf("session: %s", s)
		if s == session.Registered {
			if self, ok := c.machine.Self(); ok {
				log.Printf("registered as %s with %d peers", self, len(c.machine.Peers())-1)
			}
		}
		if s == session.Disconnected {
			select {
			case <-disconnected:
			default:
				close(disconnected)
			}
		}
	})
	defer cancelState()

	cancelChat := c.chat.Events().Subscribe(func(ev protocol.ChatEvent) {
		if msg, ok := ev.(protocol.MessageFrom); ok {
			fmt.Printf("<%d> %s\n", msg.Author, msg.Text)
		}
	})
	defer cancelChat()

	cancelLobby := c.lobby.Events().Subscribe(func(ev protocol.LobbyEvent) {
		log.Printf("lobby: %#v", ev)
	})
	defer cancelLobby()

	cancelGame := c.minigame.Events().Subscribe(func(ev protocol.MinigameEvent) {
		log.Printf("game: %#v", ev)
	})
	defer cancelGame()

	cancelNotify := c.reporter.Updates().Subscribe(func(ns []notify.Notification) {
		for _, n := range ns {
			log.Printf("notice [%d]: %s", n.ID, n.Text)
		}
	})
	defer cancelNotify()

	// Stdin lines become chat messages. The goroutine ends with the
	// process; Scan unblocks on closed stdin.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if err := c.chat.Say(line); err != nil {
				log.Printf("chat: %v", err)
			}
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutting down...")
		_ = c.machine.EndSession()
		select {
		case <-disconnected:
		case <-time.After(5 * time.Second):
		}
	case <-disconnected:
	}
	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the local HTTP gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "gateway host"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "gateway port"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c, err := buildCore(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
			srv := &http.Server{
				Addr:    addr,
				Handler: api.NewServer(c.machine, c.chat, c.workflow, c.reporter, cfg),
			}

			errc := make(chan error, 1)
			go func() {
				log.Printf("%s v%s listening on http://%s", AppName, Version, addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Println("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server proxying to a gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "gateway base URL"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client := mcp.NewClient(cmd.String("api"))
			return mcpserver.ServeStdio(client.GetMCPServer())
		},
	}
}
