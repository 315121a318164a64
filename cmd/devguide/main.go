package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flarexio/core/events"
	"github.com/flarexio/core/model"
	"github.com/flarexio/core/pubsub"
	"github.com/flarexio/devguide"
	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
	"github.com/flarexio/devguide/fixer"
	"github.com/flarexio/devguide/llm"
	"github.com/flarexio/devguide/persistence"
	"github.com/flarexio/devguide/report"

	transHTTP "github.com/flarexio/devguide/transport/http"
	transPubSub "github.com/flarexio/devguide/transport/pubsub"
)

var (
	Version   string = "0.0.0"
	BuildTime string
	GitCommit string
)

var versionCmd = &cli.Command{
	Name:    "version",
	Aliases: []string{"ver", "v"},
	Usage:   "Show version",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Show all infomation (include: Version, BuildTime, GitCommit)",
			Value:   false,
		},
	},
	Action: func(ctx *cli.Context) error {
		if !ctx.Bool("all") {
			fmt.Println(ctx.App.Version)
		} else {
			cli.ShowVersion(ctx)
		}
		return nil
	},
}

var genkeyCmd = &cli.Command{
	Name:  "genkey",
	Usage: "Generate a new ed25519 key pair",
	Action: func(ctx *cli.Context) error {
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return fmt.Errorf("failed to generate key pair: %w", err)
		}

		basedPriv := base64.StdEncoding.EncodeToString(priv)
		basedPub := base64.StdEncoding.EncodeToString(pub)

		fmt.Printf("Public Key: %s\n", basedPub)
		fmt.Printf("Private Key: %s\n", basedPriv)

		return nil
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "Sign an access token for the fix endpoint",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "subject",
			Usage: "Token subject",
			Value: "devguide",
		},
	},
	Action: func(ctx *cli.Context) error {
		if err := conf.LoadEnv(ctx); err != nil {
			return err
		}

		cfg, err := conf.LoadConfig()
		if err != nil {
			return err
		}

		if !cfg.JWT.Enabled() {
			return errors.New("jwt privkey not configured")
		}

		transHTTP.Init(cfg.BaseURL, cfg.JWT.Audience(), cfg.JWT.Privkey)

		token, err := transHTTP.NewToken(ctx.String("subject"), cfg.JWT.Timeout)
		if err != nil {
			return err
		}

		fmt.Println(token.Token)
		return nil
	},
}

var analyzeCmd = &cli.Command{
	Name:      "analyze",
	Usage:     "Analyze a source file and print the report",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Usage:   "Source language, or auto",
			Value:   analysis.Auto,
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, html or json",
			Value: "text",
		},
		&cli.BoolFlag{
			Name:  "remote",
			Usage: "Analyze through a running instance over NATS",
		},
	},
	Action: analyze,
}

func main() {
	cli.VersionPrinter = func(cli *cli.Context) {
		fmt.Println("Version: " + cli.App.Version)
		fmt.Println("BuildTime: " + BuildTime)
		fmt.Println("GitCommit: " + GitCommit)
	}

	app := &cli.App{
		Name:     "devguide",
		Usage:    "Code quality analysis and automatic fixes",
		Version:  Version,
		Commands: []*cli.Command{versionCmd, genkeyCmd, tokenCmd, analyzeCmd},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Specifies the working directory",
				EnvVars: []string{"DEVGUIDE_PATH"},
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Specifies the HTTP service port",
				Value:   8000,
				EnvVars: []string{"DEVGUIDE_HTTP_PORT"},
			},
			&cli.StringFlag{
				Name:    "nats",
				EnvVars: []string{"NATS_URL"},
				Value:   nats.DefaultURL,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// NewProviders returns the LLM providers in the order they are raced.
func NewProviders(ctx context.Context, cfg conf.Providers) ([]llm.Provider, error) {
	gemini, err := llm.NewGeminiClient(ctx, cfg.Google)
	if err != nil {
		return nil, err
	}

	return []llm.Provider{
		llm.NewOpenRouterClient(cfg.OpenRouter),
		gemini,
	}, nil
}

func NewService(ctx context.Context, cfg *conf.Config, repo analysis.Repository, publisher devguide.EventPublisher) (devguide.Service, error) {
	providers, err := NewProviders(ctx, cfg.Providers)
	if err != nil {
		return nil, err
	}

	f := fixer.New(providers,
		fixer.WithTimeout(cfg.Fix.Timeout),
		fixer.WithCache(cfg.Cache.FixSize),
	)

	return devguide.NewService(repo, f, providers, cfg.Cache, publisher), nil
}

func run(cli *cli.Context) error {
	err := conf.LoadEnv(cli)
	if err != nil {
		return err
	}

	cfg, err := conf.LoadConfig()
	if err != nil {
		return err
	}
	conf.ReplaceGlobals(cfg)

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	ctx := context.WithValue(context.Background(), model.Logger, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Add Persistence
	repo, err := persistence.NewAnalysisRepository(cfg.Persistence)
	if err != nil {
		log.Error(err.Error(),
			zap.String("infra", "persistence"),
			zap.String("driver", cfg.Persistence.Driver.String()),
		)
		return err
	}
	defer repo.Close()

	// Add Event Bus
	var (
		ps        pubsub.NATSPubSub
		publisher devguide.EventPublisher
	)

	if cfg.EventBus.Provider == conf.NATS {
		log := log.With(
			zap.String("infra", "pubsub"),
			zap.String("provider", cfg.EventBus.Provider.String()),
		)

		creds := conf.Path + "/user.creds"

		natsPS, err := pubsub.NewNATSPubSub(conf.NatsURL, cfg.Name, creds)
		if err != nil {
			log.Error(err.Error())
			return err
		}
		defer natsPS.Close()

		log.Info("connected", zap.String("url", conf.NatsURL))

		ps = natsPS
		events.ReplaceGlobals(ps)

		publisher = transPubSub.NewEventPublisher()
	}

	// Add Service and Middlewares
	svc, err := NewService(ctx, cfg, repo, publisher)
	if err != nil {
		return err
	}
	svc = devguide.LoggingMiddleware(log)(svc)

	for name, status := range svc.Status() {
		log.Info("llm provider",
			zap.String("provider", name),
			zap.Bool("configured", status.Configured),
			zap.String("model", status.Model),
		)
	}

	// Add Endpoints
	endpoints := devguide.NewEndpointSet(svc)

	// Add PubSub Transport
	if ps != nil {
		srv, err := ps.AddService(micro.Config{
			Name:        cfg.Name,
			Version:     Version,
			Description: "Code quality analysis and automatic fixes",
			Metadata: map[string]string{
				"id": cfg.Name,
			},
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		if err := transPubSub.AddEndpoints(srv, cfg.EventBus.Subject, endpoints); err != nil {
			return err
		}
	}

	// Add HTTP Transport
	r := gin.New()
	r.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		transHTTP.RequestID(),
		transHTTP.CORS(cfg.CORS.Origins()),
	)

	var auth gin.HandlerFunc
	if cfg.JWT.Enabled() {
		transHTTP.Init(
			cfg.BaseURL,        // issuer
			cfg.JWT.Audience(), // audience
			cfg.JWT.Privkey,    // ed25519 private key
		)

		// GET /.well-known/jwks.json
		r.GET("/.well-known/jwks.json", transHTTP.JWKHandler)

		auth = transHTTP.Authenticator()
	}

	transHTTP.AddRoutes(r, endpoints, auth)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(conf.Port),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err.Error(), zap.String("transport", "http"))
		}
	}()

	log.Info("listening", zap.Int("port", conf.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("shutdown", zap.String("signal", sign.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

func analyze(cli *cli.Context) error {
	if cli.NArg() != 1 {
		return errors.New("exactly one file is required")
	}

	code, err := os.ReadFile(cli.Args().First())
	if err != nil {
		return err
	}

	var a *analysis.Analysis
	if cli.Bool("remote") {
		if err := conf.LoadEnv(cli); err != nil {
			return err
		}

		cfg, err := conf.LoadConfig()
		if err != nil {
			return err
		}

		a, err = remoteAnalyze(cli.Context, cfg.EventBus.Subject, string(code), cli.String("language"))
		if err != nil {
			return err
		}
	} else {
		a = localAnalyze(string(code), cli.String("language"))
	}

	return printAnalysis(a, cli.String("format"))
}

func localAnalyze(code string, language string) *analysis.Analysis {
	code = strings.TrimRightFunc(code, unicode.IsSpace)
	language = analysis.DetectLanguage(code, language)
	return analysis.Analyze(code, language)
}

func remoteAnalyze(ctx context.Context, instance string, code string, language string) (*analysis.Analysis, error) {
	factory := transPubSub.AnalyzeFactory(conf.NatsURL)

	endpoint, closer, err := factory(instance)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	resp, err := endpoint(ctx, devguide.AnalyzeRequest{Code: code, Language: language})
	if err != nil {
		return nil, err
	}

	a, ok := resp.(*analysis.Analysis)
	if !ok {
		return nil, errors.New("invalid response")
	}

	return a, nil
}

func printAnalysis(a *analysis.Analysis, format string) error {
	switch format {
	case "text":
		fmt.Println(report.Text(a).Content)

	case "html":
		r, err := report.HTML(a)
		if err != nil {
			return err
		}
		fmt.Println(r.HTML)

	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)

	default:
		return errors.New("format not supported")
	}

	return nil
}
