package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemallousis-design/MyWarehouse/internal/api"
	"github.com/georgemallousis-design/MyWarehouse/internal/auth"
	"github.com/georgemallousis-design/MyWarehouse/internal/backup"
	"github.com/georgemallousis-design/MyWarehouse/internal/db"
	"github.com/georgemallousis-design/MyWarehouse/internal/exchange"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

const usage = `Usage: mywarehouse <command> [flags]

Commands:
  init           create the database and the first admin account
  serve          run the HTTP API server
  backup         snapshot the database into a backup directory
  import         load materials and serials from a CSV file
  export         write the materials catalog as CSV
  recategorize   re-run the categorizer over the catalog
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "backup":
		cmdBackup(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "recategorize":
		cmdRecategorize(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s", os.Args[1], usage)
		os.Exit(1)
	}
}

// levelRouter is a slog.Handler routing INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR
// goes to stderr. If logPath is non-empty, all levels are also appended to
// that file. Returns a cleanup function closing the log file.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// openDatabase opens the database and applies pending migrations.
func openDatabase(path string) *sql.DB {
	database, err := db.Open(path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	return database
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dbPath := fs.String("db", "warehouse.sqlite3", "path to SQLite database file")
	adminUser := fs.String("user", "admin", "first admin username")
	fs.Parse(args)

	if _, err := os.Stat(*dbPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: database file %s already exists\n", *dbPath)
		os.Exit(1)
	}

	password, err := initDatabase(*dbPath, *adminUser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printInitResult(*dbPath, *adminUser, password)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", "warehouse.sqlite3", "path to SQLite database file")
	addr := fs.String("addr", ":8080", "listen address")
	adminUser := fs.String("user", "admin", "admin username on first run")
	logPath := fs.String("log", "", "log file path (stdout/stderr only if empty)")
	fs.Parse(args)

	closeLog, err := setupLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	database := openDatabase(*dbPath)
	defer database.Close()
	slog.Info("database ready", "path", *dbPath)

	// One-time bootstrap: an empty user table gets the first admin account.
	password, err := bootstrapAdmin(database, *adminUser)
	if err != nil {
		slog.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}
	if password != "" {
		printInitResult(*dbPath, *adminUser, password)
		fmt.Println()
	}

	jwtSecret, err := store.SigningSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to load signing secret", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           api.NewRouter(database, jwtSecret),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

func cmdBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	dbPath := fs.String("db", "warehouse.sqlite3", "path to SQLite database file")
	dir := fs.String("dir", "backups", "backup directory")
	keep := fs.Int("keep", 10, "number of snapshots to retain (0 keeps all)")
	fs.Parse(args)

	database := openDatabase(*dbPath)
	defer database.Close()

	path, err := backup.Run(context.Background(), database, *dir, *keep)
	if err != nil {
		slog.Error("backup failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Snapshot written: %s\n", path)
}

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", "warehouse.sqlite3", "path to SQLite database file")
	file := fs.String("file", "", "CSV file to import (stdin if empty)")
	fs.Parse(args)

	input := io.Reader(os.Stdin)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		input = f
	}

	database := openDatabase(*dbPath)
	defer database.Close()

	n, err := exchange.Import(context.Background(), database, input)
	if err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d materials\n", n)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dbPath := fs.String("db", "warehouse.sqlite3", "path to SQLite database file")
	file := fs.String("file", "", "output CSV file (stdout if empty)")
	used := fs.Bool("used", false, "export used stock instead of new")
	fs.Parse(args)

	output := io.Writer(os.Stdout)
	if *file != "" {
		f, err := os.Create(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		output = f
	}

	database := openDatabase(*dbPath)
	defer database.Close()

	if err := exchange.Export(context.Background(), database, output, *used); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func cmdRecategorize(args []string) {
	fs := flag.NewFlagSet("recategorize", flag.ExitOnError)
	dbPath := fs.String("db", "warehouse.sqlite3", "path to SQLite database file")
	onlyUncategorized := fs.Bool("only-uncategorized", false, "skip manually categorized materials")
	fs.Parse(args)

	database := openDatabase(*dbPath)
	defer database.Close()

	n, err := store.BatchAutocategorize(context.Background(), database, *onlyUncategorized)
	if err != nil {
		slog.Error("recategorization failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Recategorized %d materials\n", n)
}

// initDatabase creates a new database, applies the schema and registers the
// first admin account with a generated password. Returns the password.
func initDatabase(path, adminUsername string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("running migrations: %w", err)
	}

	password, err := bootstrapAdmin(database, adminUsername)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if password == "" {
		os.Remove(path)
		return "", fmt.Errorf("database already has users")
	}
	return password, nil
}

// bootstrapAdmin seeds the first admin account when the user table is empty.
// Returns the generated password, or "" when users already exist.
func bootstrapAdmin(database *sql.DB, adminUsername string) (string, error) {
	ctx := context.Background()
	count, err := store.CountUsers(ctx, database)
	if err != nil {
		return "", fmt.Errorf("checking users: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, salt, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	if _, err := store.CreateUser(ctx, database, adminUsername, hash, salt, model.RoleAdmin1); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
