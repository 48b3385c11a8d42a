package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattdef/dampen-sub004/internal/config"
	"github.com/mattdef/dampen-sub004/pkg/codegen"
	"github.com/mattdef/dampen-sub004/pkg/instr"
	"github.com/mattdef/dampen-sub004/pkg/interp"
	"github.com/mattdef/dampen-sub004/pkg/ir"
	"github.com/mattdef/dampen-sub004/pkg/reload"
	"github.com/mattdef/dampen-sub004/pkg/renderer"
	"github.com/mattdef/dampen-sub004/pkg/state"
	"github.com/mattdef/dampen-sub004/pkg/watch"
)

func newDevCommand() *cobra.Command {
	var modelJSON string
	var port int
	var host string
	var noInspector bool

	cmd := &cobra.Command{
		Use:   "dev <document.ui.json>",
		Short: "Watch a document and hot-reload it on change",
		Long: `Parses the document, evaluates it through the interpreter against a model
prototype, and re-runs the cycle on every saved edit. Parse failures keep the
last good document on screen behind an error overlay. State carried in the
model survives reloads where the model shape still matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(args[0], modelJSON, host, port, noInspector)
		},
	}

	cmd.Flags().StringVarP(&modelJSON, "model-json", "m", "", "Path to a JSON model prototype (defaults to an empty model)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Inspector port (overrides dampen.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Inspector host (overrides dampen.yaml)")
	cmd.Flags().BoolVar(&noInspector, "no-inspector", false, "Disable the websocket inspector")

	return cmd
}

func runDev(entry, modelJSON, host string, port int, noInspector bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  %v (using defaults)", err)
		cfg = config.Default()
	}
	if port != 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if noInspector {
		cfg.Dev.Inspector = false
	}

	newModel, err := modelFactory(modelJSON)
	if err != nil {
		return err
	}

	parser := ir.JSONParser{}
	src, err := os.ReadFile(entry)
	if err != nil {
		return fmt.Errorf("read %s: %w", entry, err)
	}
	doc, perr := parser.Parse(entry, src)
	if perr != nil {
		return perr
	}

	roots := cfg.Watch.Roots
	if len(roots) == 0 {
		roots = []string{filepath.Dir(entry)}
	}
	watcher, err := watch.New(watch.Config{
		Roots:      roots,
		Extensions: cfg.Watch.Extensions,
		Window:     cfg.DebounceWindow(),
	})
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.Start()
	log.Printf("👀 watching %v for %v", roots, cfg.Watch.Extensions)

	var ins *inspector
	if cfg.Dev.Inspector {
		ins = newInspector()
		mux := http.NewServeMux()
		mux.HandleFunc("/dampen/inspect", ins.handleWebSocket)
		srv := &http.Server{Addr: cfg.Addr(), Handler: mux}
		go func() {
			log.Printf("🔌 inspector listening on ws://%s/dampen/inspect", cfg.Addr())
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("⚠️  inspector: %v", err)
			}
		}()
		defer srv.Close()
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	it := interp.New()
	it.SetLogger(logger)
	surface := renderer.NewText(os.Stdout)

	var coord *reload.Coordinator
	coord = reload.New(reload.Config{
		Parser:   parser,
		NewModel: newModel,
		Interp:   it,
		Logger:   logger,
		Render: func(tree *instr.Instruction) {
			if err := surface.Render(tree, nil); err != nil {
				log.Printf("⚠️  render: %v", err)
				return
			}
			log.Printf("🎨 rendered %d instructions", tree.Count())
		},
		OnRestore: func(report *state.RestoreReport) {
			if !report.Clean() {
				log.Printf("⚠️  restore: %d dropped, %d warnings", len(report.Dropped), len(report.Warnings))
			}
		},
		OnApply: func(path string) {
			if ins != nil {
				ins.broadcast("RELOAD", map[string]any{"path": path})
			}
		},
		OnParseError: func(perr *ir.ParseError) {
			fmt.Fprintln(os.Stderr, coord.Overlay().View())
			if ins != nil {
				ins.broadcast("PARSE_ERROR", map[string]any{
					"file":    perr.File,
					"line":    perr.Line,
					"col":     perr.Col,
					"message": perr.Message,
				})
			}
		},
	})
	coord.Adopt(doc, newModel())
	log.Printf("🚀 dev session started for %s", entry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// On shutdown the watcher goes first so no event lands mid-cycle.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	unhook := context.AfterFunc(ctx, func() {
		watcher.Close()
		cancelLoop()
	})
	defer unhook()

	err = coord.Run(loopCtx, watcher.Events(), watcher.Warnings())
	if err == context.Canceled {
		log.Println("🛑 shutting down")
		return nil
	}
	return err
}

// modelFactory builds the per-cycle model constructor. With a prototype file
// each cycle gets a typed struct populated from the file's values; without
// one the model is an empty struct and documents can only use static content.
func modelFactory(modelJSON string) (func() any, error) {
	if modelJSON == "" {
		return func() any { return &struct{}{} }, nil
	}
	src, err := os.ReadFile(modelJSON)
	if err != nil {
		return nil, fmt.Errorf("read model prototype: %w", err)
	}
	// Derive the type once so every cycle restores into the same shape.
	proto, err := codegen.ModelFromJSON(src)
	if err != nil {
		return nil, err
	}
	return func() any {
		m := codegen.NewOf(proto)
		if err := json.Unmarshal(src, m); err != nil {
			log.Printf("⚠️  model prototype values: %v", err)
		}
		return m
	}, nil
}
