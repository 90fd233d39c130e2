package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/internal/config"
	"github.com/nick-dorsch/things2do/internal/db"
	"github.com/nick-dorsch/things2do/internal/mcp"
	"github.com/nick-dorsch/things2do/internal/server"
	"github.com/nick-dorsch/things2do/internal/store"
	"github.com/nick-dorsch/things2do/internal/ui"
)

var (
	configPath string
	dataPath   string
	dbPath     string
	backend    string
	verbose    bool

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	// swapped out in tests
	runMenu    = ui.RunMenu
	runBoardUI = ui.RunBoard
)

func main() {
	err := execute(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(argv []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("things2do", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", filepath.Join(config.DefaultDir, config.DefaultFileName), "Path to config file")
	fs.StringVar(&dataPath, "data-path", "", "Path to the task file (overrides config)")
	fs.StringVar(&dbPath, "db-path", "", "Path to the sqlite database (overrides config)")
	fs.StringVar(&backend, "backend", "", "Storage backend: json or sqlite (overrides config)")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: things2do [flags] <command> [arguments]")
		fmt.Fprintln(stderr, "\nRunning `things2do` with no command opens the menu.")
		fmt.Fprintln(stderr, "\nCommands:")
		fmt.Fprintln(stderr, "  init      Create the data directory and default config")
		fmt.Fprintln(stderr, "  board     Open the interactive board")
		fmt.Fprintln(stderr, "  list      Print tasks in priority order")
		fmt.Fprintln(stderr, "  add       Place a new task")
		fmt.Fprintln(stderr, "  edit      Change a task")
		fmt.Fprintln(stderr, "  remove    Delete a task")
		fmt.Fprintln(stderr, "  show      Print one task")
		fmt.Fprintln(stderr, "  tick      Apply daily drift and save")
		fmt.Fprintln(stderr, "  status    Count tasks per quadrant")
		fmt.Fprintln(stderr, "  mcp       Serve MCP tools on stdio")
		fmt.Fprintln(stderr, "  web       Serve the read-only JSON view")
		fmt.Fprintln(stderr, "  export    Write all tasks to a task file")
		fmt.Fprintln(stderr, "  import    Replace all tasks with a task file")
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return err
	}

	logger = newLogger(stderr)

	var command string
	var args []string

	if fs.NArg() == 0 {
		selected, err := runMenu()
		if err != nil {
			return fmt.Errorf("failed to run menu: %w", err)
		}
		if selected == "" {
			return nil
		}
		command = selected
	} else {
		command = fs.Arg(0)
		args = fs.Args()[1:]
	}

	switch command {
	case "init":
		return runInit(args)
	case "board":
		return runBoard(args)
	case "list":
		return runList(args)
	case "add":
		return runAdd(args)
	case "edit":
		return runEdit(args)
	case "remove":
		return runRemove(args)
	case "show":
		return runShow(args)
	case "tick":
		return runTick(args)
	case "status":
		return runStatus(args)
	case "mcp":
		return runMCP(args)
	case "web":
		return runWeb(args)
	case "export":
		return runExport(args)
	case "import":
		return runImport(args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.Storage.DataPath = dataPath
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is an open store plus the board loaded from it.
type session struct {
	cfg   *config.Config
	store store.Store
	board *board.Board
	close func() error

	// saveMu orders snapshots so an older one never lands over a newer one.
	saveMu sync.Mutex
}

// openStore opens the configured backend. The sqlite backend keeps the task
// file in sync through auto-export.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := db.Open(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Init(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		database.EnableAutoExport(cfg.Storage.DataPath, logger)
		return database, database.Close, nil
	default:
		return store.NewFileStore(cfg.Storage.DataPath, logger), func() error { return nil }, nil
	}
}

// openSession loads every task and applies the drift owed since the last
// run, the same recomputation a board does at startup.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tasks, err := st.Load(ctx)
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	b := board.New(cfg.GridSize, tasks)
	if moved := b.Tick(time.Now()); moved > 0 {
		logger.Debug("applied pending drift", "moved", moved)
	}

	return &session{cfg: cfg, store: st, board: b, close: closeFn}, nil
}

func (s *session) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.store.Save(ctx, s.board.Tasks()); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	dataDir := filepath.Join(targetDir, config.DefaultDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.DefaultDir, err)
	}
	fmt.Printf("✓ Created %s/ directory\n", config.DefaultDir)

	gitignorePath := filepath.Join(dataDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("things2do.db*\nthings2do.log\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Printf("✓ Created %s/.gitignore\n", config.DefaultDir)

	finalConfigPath := configPath
	if configPath == filepath.Join(config.DefaultDir, config.DefaultFileName) {
		finalConfigPath = filepath.Join(dataDir, config.DefaultFileName)
	}
	if err := config.WriteDefault(finalConfigPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("✓ Wrote config to %s\n", finalConfigPath)

	configPath = finalConfigPath
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rebase := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(targetDir, p)
	}
	cfg.Storage.DataPath = rebase(cfg.Storage.DataPath)
	cfg.Storage.DBPath = rebase(cfg.Storage.DBPath)

	if cfg.Storage.Backend == config.BackendSQLite {
		database, err := db.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := context.Background()
		if err := database.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		fmt.Printf("✓ Initialized database at %s\n", cfg.Storage.DBPath)

		if _, err := os.Stat(cfg.Storage.DataPath); err == nil {
			n, err := database.ImportFile(ctx, cfg.Storage.DataPath, logger)
			if err != nil {
				return fmt.Errorf("failed to import task file: %w", err)
			}
			fmt.Printf("✓ Imported %d task(s) from %s\n", n, cfg.Storage.DataPath)
		}
	}

	fmt.Println("✓ things2do initialized successfully")
	return nil
}

func runBoard(args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	// The TUI owns the terminal; log to a file instead.
	logPath := filepath.Join(filepath.Dir(s.cfg.Storage.DataPath), "things2do.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger = newLogger(logFile)

	if err := runBoardUI(s.board, s.cfg.TickInterval); err != nil {
		return fmt.Errorf("failed to run board: %w", err)
	}
	return s.save(ctx)
}

func runMCP(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	// Persist after every change so a killed server loses nothing.
	s.board.SetOnChange(func() {
		if err := s.save(context.Background()); err != nil {
			logger.Error("failed to save tasks", "error", err)
		}
	})

	ticker := board.NewTicker(s.board, s.cfg.TickInterval)
	ticker.Logger = logger
	go ticker.Run(ctx)

	return mcp.Serve(mcp.NewServer(s.board))
}

func runWeb(args []string) error {
	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	port := webFlags.String("port", "", "Port to listen on (overrides config)")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	s.board.SetOnChange(func() {
		if err := s.save(context.Background()); err != nil {
			logger.Error("failed to save tasks", "error", err)
		}
	})

	ticker := board.NewTicker(s.board, s.cfg.TickInterval)
	ticker.Logger = logger
	go ticker.Run(ctx)

	addr := fmt.Sprintf(":%s", s.cfg.Web.Port)
	if *port != "" {
		addr = fmt.Sprintf(":%s", *port)
	}

	srv := server.NewServer(s.board)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving board", "url", "http://localhost"+addr)
	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
