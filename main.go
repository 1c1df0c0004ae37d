package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"MudraBuilder/commands"
	"MudraBuilder/internal/api"
	"MudraBuilder/internal/builder"
	"MudraBuilder/internal/console"
	"MudraBuilder/internal/mapserver"
	"MudraBuilder/internal/viewer"
)

func main() {
	addr := flag.String("addr", ":4001", "TCP address the designer console listens on")
	useTLS := flag.Bool("tls", false, "Enable TLS using the provided certificate and key files")
	certFile := flag.String("cert", "data/tls/cert.pem", "Path to the TLS certificate file")
	keyFile := flag.String("key", "data/tls/key.pem", "Path to the TLS private key file")
	adminAccount := flag.String("admin", "admin", "Designer account granted administrator privileges")
	accountsPath := flag.String("accounts", "data/designers.json", "Path to the designer accounts database")
	apiURL := flag.String("api", "", "Base URL of the map REST API (empty serves an in-memory API)")
	apiListen := flag.String("api-listen", "127.0.0.1:5001", "Address of the in-memory API when -api is empty")
	seedPath := flag.String("seed", "", "Area file loaded into the in-memory API")
	savePath := flag.String("save", "", "Write the in-memory API's map to this area file on shutdown")
	viewerAddr := flag.String("viewer", "", "Optional address for the websocket map viewer feed")
	logRequests := flag.Bool("log-requests", false, "Log every in-memory API request")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base := strings.TrimSpace(*apiURL)
	var embedded *mapserver.Server
	if base == "" {
		srv, url, err := startMapServer(ctx, *apiListen, *seedPath, *logRequests, logger)
		if err != nil {
			log.Fatal(err)
		}
		embedded, base = srv, url
	}
	client, err := api.NewClient(base)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("using map api", "url", client.BaseURL())

	options := []console.ServerOption{console.WithLogger(logger)}
	if trimmed := strings.TrimSpace(*viewerAddr); trimmed != "" {
		feed := viewer.NewBroadcaster()
		options = append(options, console.WithSessionHooks(func(designer string) builder.Hooks {
			return feed.HooksFor(designer)
		}))
		go func() {
			if err := viewer.NewServer(feed, logger).ListenAndServe(ctx, trimmed); err != nil {
				logger.Error("viewer stopped", "err", err)
			}
		}()
	}

	if *useTLS {
		err = console.ListenAndServeTLS(ctx, *addr, *accountsPath, *certFile, *keyFile, *adminAccount, client, commands.Dispatch, options...)
	} else {
		err = console.ListenAndServe(ctx, *addr, *accountsPath, *adminAccount, client, commands.Dispatch, options...)
	}

	if embedded != nil && *savePath != "" {
		if saveErr := mapserver.WriteSeedFile(*savePath, embedded.Snapshot()); saveErr != nil {
			logger.Error("save map", "path", *savePath, "err", saveErr)
		} else {
			logger.Info("map saved", "path", *savePath)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}

// startMapServer serves an in-memory map API on addr and returns its base URL.
func startMapServer(ctx context.Context, addr, seedPath string, logRequests bool, logger *slog.Logger) (*mapserver.Server, string, error) {
	var seed mapserver.Seed
	if seedPath != "" {
		loaded, err := mapserver.LoadSeedFile(seedPath)
		if err != nil {
			return nil, "", err
		}
		seed = loaded
	}
	opts := []mapserver.Option{mapserver.WithLogger(logger)}
	if logRequests {
		opts = append(opts, mapserver.WithRequestLogging())
	}
	srv, err := mapserver.New(seed, opts...)
	if err != nil {
		return nil, "", err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("map api stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()
	logger.Info("in-memory map api listening", "addr", ln.Addr().String(), "rooms", len(seed.Rooms))
	return srv, "http://" + ln.Addr().String(), nil
}
