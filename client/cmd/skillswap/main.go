package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/maynagashev/skillswap/client/internal/api"
	"github.com/maynagashev/skillswap/client/internal/sessionfile"
	"github.com/maynagashev/skillswap/models"
)

const (
	logDir             = "logs"
	logFileName        = "client.log"
	logFilePermissions = 0o666

	serverURLEnvVar   = "SKILLSWAP_SERVER_URL"
	sessionFileEnvVar = "SKILLSWAP_SESSION_FILE"
	defaultServerURL  = "http://localhost:5000"
	requestTimeout    = 30 * time.Second
)

// Переменные для версии и даты сборки, устанавливаются через ldflags.
//
//nolint:gochecknoglobals // Устанавливаются через ldflags при сборке
var (
	version    = "dev"
	buildDate  = "unknown"
	commitHash = "N/A"
)

const usage = `Использование: skillswap [флаги] <команда> [аргументы]

Команды:
  signup   -email -password -name [-location] [-offers a,b] [-wants a,b] [-availability a,b] [-private]
  login    -email -password
  logout
  me
  profile  [-name] [-location] [-offers] [-wants] [-availability] [-public=true|false]
  browse   [-q текст]
  swaps
  send     -to ID -offer навык -want навык [-message текст]
  respond  -id ID -status accepted|rejected
  summary
`

// setupLogging настраивает логирование в файл logs/client.log.
func setupLogging() (io.Closer, error) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для логов: %w", err)
	}
	logPath := filepath.Join(logDir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть лог-файл: %w", err)
	}
	logHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(logHandler))
	slog.Info("Логгер инициализирован", "path", logPath)
	return logFile, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if code != 0 {
		stop()
		_ = logFile.Close()
		os.Exit(code) //nolint:gocritic // Ресурсы освобождены вручную
	}
}

// app хранит состояние одного запуска CLI.
type app struct {
	serverURL string
	client    api.Client
	sessions  *sessionfile.Store
	out       io.Writer
}

// run разбирает аргументы и выполняет команду. Возвращает код выхода.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("skillswap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	versionFlag := fs.Bool("version", false, "Показать версию и дату сборки")
	serverURL := fs.String("server-url", envOr(serverURLEnvVar, defaultServerURL),
		"URL сервера SkillSwap (env: "+serverURLEnvVar+")")
	sessionPath := fs.String("session-file", envOr(sessionFileEnvVar, defaultSessionPath()),
		"Файл с сохраненной сессией (env: "+sessionFileEnvVar+")")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "SkillSwap Client\nVersion: %s\nBuild Date: %s\nCommit Hash: %s\n",
			version, buildDate, commitHash)
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	client, err := api.NewHTTPClient(*serverURL)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	a := &app{
		serverURL: *serverURL,
		client:    client,
		sessions:  sessionfile.New(*sessionPath),
		out:       stdout,
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err = a.restoreSession(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	command, cmdArgs := fs.Arg(0), fs.Args()[1:]
	slog.Info("Выполнение команды", "command", command, "server_url", a.serverURL)

	if err = a.dispatch(ctx, command, cmdArgs, stderr); err != nil {
		slog.Error("Ошибка выполнения команды", "command", command, "error", err)
		if errors.Is(err, api.ErrAuthorization) {
			_ = a.sessions.Clear(ctx)
			fmt.Fprintln(stderr, "Требуется вход: выполните команду login")
			return 1
		}
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func (a *app) dispatch(ctx context.Context, command string, args []string, stderr io.Writer) error {
	switch command {
	case "signup":
		return a.signup(ctx, args, stderr)
	case "login":
		return a.login(ctx, args, stderr)
	case "logout":
		return a.logout(ctx)
	case "me":
		return a.print(a.client.Me(ctx))
	case "profile":
		return a.profile(ctx, args, stderr)
	case "browse":
		return a.browse(ctx, args, stderr)
	case "swaps":
		return a.print(a.client.ListSwaps(ctx))
	case "send":
		return a.send(ctx, args, stderr)
	case "respond":
		return a.respond(ctx, args, stderr)
	case "summary":
		return a.print(a.client.Summary(ctx))
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("неизвестная команда %q", command)
	}
}

func (a *app) restoreSession(ctx context.Context) error {
	token, err := a.sessions.Load(ctx, a.serverURL)
	if err != nil {
		return fmt.Errorf("не удалось прочитать сессию: %w", err)
	}
	if token != "" {
		a.client.SetSessionToken(token)
		slog.Debug("Сессия восстановлена", "path", a.sessions.Path())
	}
	return nil
}

func (a *app) saveSession(ctx context.Context) error {
	if err := a.sessions.Save(ctx, a.serverURL, a.client.SessionToken()); err != nil {
		return fmt.Errorf("не удалось сохранить сессию: %w", err)
	}
	return nil
}

func (a *app) signup(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newCommandFlags("signup", stderr)
	req := models.SignupRequest{}
	var offers, wants, availability string
	var private bool
	fs.StringVar(&req.Email, "email", "", "Email")
	fs.StringVar(&req.Password, "password", "", "Пароль")
	fs.StringVar(&req.Name, "name", "", "Имя")
	fs.StringVar(&req.Location, "location", "", "Город")
	fs.StringVar(&offers, "offers", "", "Предлагаемые навыки через запятую")
	fs.StringVar(&wants, "wants", "", "Желаемые навыки через запятую")
	fs.StringVar(&availability, "availability", "", "Доступность через запятую")
	fs.BoolVar(&private, "private", false, "Скрыть профиль из каталога")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.SkillsOffered = splitList(offers)
	req.SkillsWanted = splitList(wants)
	req.Availability = splitList(availability)
	if private {
		isPublic := false
		req.IsPublic = &isPublic
	}

	user, err := a.client.Signup(ctx, req)
	if err != nil {
		return err
	}
	if err = a.saveSession(ctx); err != nil {
		return err
	}
	return a.print(user, nil)
}

func (a *app) login(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newCommandFlags("login", stderr)
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Пароль")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err = a.saveSession(ctx); err != nil {
		return err
	}
	return a.print(user, nil)
}

func (a *app) logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("не удалось удалить сессию: %w", err)
	}
	return a.print(models.MessageResponse{Message: "Logged out successfully"}, nil)
}

func (a *app) profile(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newCommandFlags("profile", stderr)
	name := fs.String("name", "", "Имя")
	location := fs.String("location", "", "Город")
	offers := fs.String("offers", "", "Предлагаемые навыки через запятую")
	wants := fs.String("wants", "", "Желаемые навыки через запятую")
	availability := fs.String("availability", "", "Доступность через запятую")
	public := fs.Bool("public", true, "Показывать профиль в каталоге")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// В патч попадают только явно переданные флаги
	var patch models.ProfilePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "location":
			patch.Location = location
		case "offers":
			list := splitList(*offers)
			patch.SkillsOffered = &list
		case "wants":
			list := splitList(*wants)
			patch.SkillsWanted = &list
		case "availability":
			list := splitList(*availability)
			patch.Availability = &list
		case "public":
			patch.IsPublic = public
		}
	})
	return a.print(a.client.UpdateProfile(ctx, patch))
}

func (a *app) browse(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newCommandFlags("browse", stderr)
	query := fs.String("q", "", "Поиск по имени, навыкам и городу")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.print(a.client.Browse(ctx, *query))
}

func (a *app) send(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newCommandFlags("send", stderr)
	to := fs.String("to", "", "ID получателя")
	offer := fs.String("offer", "", "Предлагаемый навык")
	want := fs.String("want", "", "Желаемый навык")
	message := fs.String("message", "", "Сообщение")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	return a.print(a.client.SendSwap(ctx, models.SendSwapRequest{
		FromUserID:   me.ID,
		ToUserID:     *to,
		FromUserName: me.Name,
		SkillOffered: *offer,
		SkillWanted:  *want,
		Message:      *message,
	}))
}

func (a *app) respond(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newCommandFlags("respond", stderr)
	id := fs.String("id", "", "ID запроса")
	status := fs.String("status", "", "accepted или rejected")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.print(a.client.RespondSwap(ctx, *id, models.SwapStatus(*status)))
}

// print выводит результат команды в формате JSON.
func (a *app) print(v interface{}, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCommandFlags(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".skillswap", "session.json")
	}
	return filepath.Join(dir, "skillswap", "session.json")
}

// splitList разбирает список через запятую, отбрасывая пустые элементы.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
