package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

const version = "0.1.0"

type runCmd struct{}

type versionCmd struct{}

type chatsCmd struct {
	Project string `help:"Only list chats in this project"`
}

type exportCmd struct {
	ID   string `arg:"" optional:"" help:"Chat id or id prefix (defaults to the active chat)"`
	HTML bool   `help:"Export as HTML instead of Markdown"`
	Out  string `short:"o" type:"path" help:"Directory to write the export to"`
}

type keySetCmd struct {
	Key string `arg:"" optional:"" help:"API key. Read from stdin when omitted"`
}

type keyClearCmd struct{}

type keyCmd struct {
	Set   keySetCmd   `cmd:"" help:"Store the API key"`
	Clear keyClearCmd `cmd:"" help:"Remove the stored API key"`
}

var program *tea.Program

var cli struct {
	Version versionCmd `cmd:"version" help:"Print version information"`
	Prompt  string     `short:"p" help:"Send one message and print the reply. Use - to read it from stdin"`
	Chat    string     `help:"Chat to send the -p message to (defaults to a new chat)"`
	Model   string     `short:"m" help:"Model for the -p message"`
	Run     runCmd     `cmd:"" default:"1" help:"Run the interactive application"`
	Chats   chatsCmd   `cmd:"" help:"List chats"`
	Export  exportCmd  `cmd:"" help:"Export a chat to a file"`
	Key     keyCmd     `cmd:"" help:"Manage the OpenRouter API key"`
}

func initLogger(level string) {
	dir, err := dataDir()
	if err != nil {
		panic(fmt.Errorf("failed to get data directory: %w", err))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(fmt.Errorf("failed to create log directory %s: %w", dir, err))
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, appName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: lvl})))
}

func (v versionCmd) Run() error {
	fmt.Printf("orchat v%s\n", version)
	return nil
}

func (r *runCmd) Run(config *Config) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("This program requires a terminal to run.")
		fmt.Println("Please run it in a terminal emulator, or use -p for a single message.")
		return nil
	}

	app, err := LoadApp(config)
	if err != nil {
		return fmt.Errorf("failed to open chat store: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("app.close_failed", "error", err)
		}
	}()

	tuiModel := NewTUIModel(app)
	program = tea.NewProgram(tuiModel, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Store writes happen inside Update, where a blocking Send would
	// deadlock the program.
	app.OnPersistError(func(key string, err error) {
		go program.Send(persistErrorMsg{key: key, err: err})
	})

	if config.UI.WatchConfig {
		watcher, err := NewConfigWatcher(defaultConfigPaths(), func(c *Config) {
			program.Send(configReloadedMsg{config: c})
		})
		if err != nil {
			slog.Warn("config.watch_failed", "error", err)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}

func (c *chatsCmd) Run(config *Config) error {
	app, err := LoadApp(config)
	if err != nil {
		return err
	}
	defer app.Close()

	chats := app.Chats.List()
	if c.Project != "" {
		p, ok := app.Projects.FindByName(c.Project)
		if !ok {
			return fmt.Errorf("no project named %q", c.Project)
		}
		chats = app.Chats.InProject(p.ID)
	}
	if len(chats) == 0 {
		fmt.Println("No chats yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMESSAGES\tMODEL\tUPDATED")
	for _, chat := range chats {
		marker := ""
		if chat.ID == app.Chats.ActiveID() {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%s\t%s\t%d\t%s\t%s\n",
			marker, shortID(chat.ID), truncateWidth(chat.Name, 40), len(chat.Messages),
			ModelLabel(chat.EffectiveModel(app.Settings.DefaultModel())), formatRelativeTime(chat.Timestamp))
	}
	return w.Flush()
}

func (e *exportCmd) Run(config *Config) error {
	app, err := LoadApp(config)
	if err != nil {
		return err
	}
	defer app.Close()

	chat, err := findChat(app.Chats, e.ID)
	if err != nil {
		return err
	}
	format := ExportMarkdown
	if e.HTML {
		format = ExportHTML
	}
	projectName := ""
	if p, ok := app.Projects.Get(chat.ProjectID); ok {
		projectName = p.Name
	}
	path, err := exportChat(chat, format, projectName, e.Out)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// findChat resolves a full id or an unambiguous id prefix. An empty id
// means the active chat.
func findChat(chats *ChatStore, id string) (Chat, error) {
	if id == "" {
		chat, ok := chats.Active()
		if !ok {
			return Chat{}, errors.New("no active chat")
		}
		return chat, nil
	}
	if chat, ok := chats.Get(id); ok {
		return chat, nil
	}
	var matches []Chat
	for _, chat := range chats.List() {
		if strings.HasPrefix(chat.ID, id) {
			matches = append(matches, chat)
		}
	}
	switch len(matches) {
	case 0:
		return Chat{}, fmt.Errorf("no chat with id %q", id)
	case 1:
		return matches[0], nil
	default:
		return Chat{}, fmt.Errorf("chat id %q is ambiguous", id)
	}
}

func (k *keySetCmd) Run(config *Config) error {
	key := k.Key
	if key == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read key: %w", err)
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return errors.New("no API key given")
	}

	app, err := LoadApp(config)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.Settings.SetAPIKey(key); err != nil {
		return err
	}
	fmt.Println("API key saved.")
	return nil
}

func (k *keyClearCmd) Run(config *Config) error {
	app, err := LoadApp(config)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.Settings.SetAPIKey(""); err != nil {
		return err
	}
	fmt.Println("API key cleared.")
	return nil
}

// runPrompt sends a single message without the UI and prints the reply.
func runPrompt(ctx context.Context, app *App, prompt, chatID, model string, out io.Writer) error {
	if prompt == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read prompt: %w", err)
		}
		prompt = string(data)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return errors.New("empty prompt")
	}

	opts := TurnOptions{NewChat: true, Model: model}
	if chatID != "" {
		chat, err := findChat(app.Chats, chatID)
		if err != nil {
			return err
		}
		opts = TurnOptions{ChatID: chat.ID, Model: model}
	}

	reply, err := app.Engine.SendWith(ctx, prompt, opts)
	if err != nil {
		if errors.Is(err, ErrAuthMissing) {
			return fmt.Errorf("%s: run '%s key set' first", AuthNotice.Body, appName)
		}
		return fmt.Errorf("%s: %w", FailureNotice, err)
	}
	_, err = fmt.Fprintln(out, reply)
	return err
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description("A terminal chat client for OpenRouter models."))

	config, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Using defaults due to config load failure: %v\n", err)
		cfg := defaultConfig()
		config = &cfg
	}
	initLogger(config.Logging.Level)

	if cli.Prompt != "" {
		app, err := LoadApp(config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		err = runPrompt(context.Background(), app, cli.Prompt, cli.Chat, cli.Model, os.Stdout)
		if cerr := app.Close(); cerr != nil {
			slog.Error("app.close_failed", "error", cerr)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := ctx.Run(config); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
