// Package console serves the designer console: a telnet front end that
// drives one builder.Editor per logged-in designer.
package console

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"MudraBuilder/internal/builder"
)

// Dispatcher executes one input line for a designer. Returning true ends
// the session.
type Dispatcher func(ctx context.Context, d *Designer, line string) bool

type serverConfig struct {
	addr         string
	accountsPath string
	adminAccount string
	enableTLS    bool
	certFile     string
	keyFile      string
}

type serverOptions struct {
	logger       *slog.Logger
	sessionHooks func(designer string) builder.Hooks
}

// ServerOption customises ListenAndServe and ListenAndServeTLS.
type ServerOption func(*serverOptions)

func WithLogger(l *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSessionHooks adds render hooks to every designer's editor, after the
// console view. The function is called once per login.
func WithSessionHooks(fn func(designer string) builder.Hooks) ServerOption {
	return func(o *serverOptions) {
		o.sessionHooks = fn
	}
}

var (
	accountsFactory       = NewAccounts
	netListenFunc         = net.Listen
	tlsListenFunc         = tls.Listen
	ensureCertificateFunc = ensureCertificate
)

const (
	postLoginHint = "Type 'help' for commands or 'map' to see the current level."
	logoffLine    = "Map session closed."
)

// ListenAndServe accepts designer connections on addr until ctx is cancelled
// or the listener fails. Every designer edits store through their own editor.
func ListenAndServe(ctx context.Context, addr, accountsPath, adminAccount string, store builder.Store, dispatcher Dispatcher, opts ...ServerOption) error {
	cfg := serverConfig{addr: addr, accountsPath: accountsPath, adminAccount: adminAccount}
	return listenAndServe(ctx, cfg, store, dispatcher, opts...)
}

// ListenAndServeTLS is ListenAndServe over TLS. A self-signed certificate is
// generated when certFile or keyFile cannot be loaded.
func ListenAndServeTLS(ctx context.Context, addr, accountsPath, certFile, keyFile, adminAccount string, store builder.Store, dispatcher Dispatcher, opts ...ServerOption) error {
	cfg := serverConfig{
		addr:         addr,
		accountsPath: accountsPath,
		adminAccount: adminAccount,
		enableTLS:    true,
		certFile:     certFile,
		keyFile:      keyFile,
	}
	return listenAndServe(ctx, cfg, store, dispatcher, opts...)
}

func listenAndServe(ctx context.Context, cfg serverConfig, store builder.Store, dispatcher Dispatcher, opts ...ServerOption) error {
	if dispatcher == nil {
		return fmt.Errorf("dispatcher must not be nil")
	}
	if store == nil {
		return fmt.Errorf("store must not be nil")
	}
	options := serverOptions{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	logger := options.logger

	accounts, err := accountsFactory(cfg.accountsPath)
	if err != nil {
		return err
	}
	accounts.SetAdminAccount(cfg.adminAccount)

	var ln net.Listener
	if cfg.enableTLS {
		cert, created, err := ensureCertificateFunc(cfg.certFile, cfg.keyFile, cfg.addr)
		if err != nil {
			return err
		}
		if created {
			logger.Info("generated self-signed certificate", "cert", cfg.certFile, "key", cfg.keyFile)
		}
		ln, err = tlsListenFunc("tcp", cfg.addr, &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12})
		if err != nil {
			return err
		}
	} else {
		ln, err = netListenFunc("tcp", cfg.addr)
		if err != nil {
			return err
		}
	}
	defer ln.Close()
	logger.Info("designer console listening", "addr", ln.Addr().String(), "tls", cfg.enableTLS)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s := &consoleServer{
		accounts:   accounts,
		store:      store,
		dispatcher: dispatcher,
		opts:       options,
		logger:     logger,
	}
	err = acceptConnections(ln, logger, func(conn net.Conn) {
		go s.handleConn(ctx, conn)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

type consoleServer struct {
	accounts   *Accounts
	store      builder.Store
	dispatcher Dispatcher
	opts       serverOptions
	logger     *slog.Logger
}

func (s *consoleServer) handleConn(ctx context.Context, conn net.Conn) {
	session := NewSession(conn)
	defer session.Close()
	remote := conn.RemoteAddr().String()

	name, admin, err := login(session, s.accounts)
	if err != nil {
		s.logger.Info("login failed", "remote", remote, "err", err)
		return
	}
	if err := s.accounts.RecordLogin(name, time.Now()); err != nil {
		s.logger.Warn("record login", "designer", name, "err", err)
	}
	s.logger.Info("designer connected", "designer", name, "remote", remote, "admin", admin)

	var extra builder.Hooks
	if s.opts.sessionHooks != nil {
		extra = s.opts.sessionHooks(name)
	}
	d := NewDesigner(name, admin, s.store, s.logger, extra)
	d.Terminal = session
	width, _ := session.Size()
	d.View.SetWidth(width)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for out := range d.Output {
			_ = session.WriteString(out)
		}
	}()

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.Send("\r\n" + Style(postLoginHint, AnsiGreen) + "\r\n")
	if err := d.Editor.Load(sctx); err != nil {
		d.Send("\r\n" + Style("Could not load the map: "+err.Error(), AnsiYellow))
	}
	d.View.Flush()
	d.Send(Prompt(d.View.Status()))

	_ = conn.SetReadDeadline(time.Time{})
	for {
		line, err := session.ReadLine()
		if err != nil {
			break
		}
		line = Trim(line)
		if line == "" {
			d.Send(Prompt(d.View.Status()))
			continue
		}
		if w, _ := session.Size(); w > 0 {
			d.View.SetWidth(w)
		}
		quit := s.dispatcher(sctx, d, line)
		d.View.Flush()
		if quit {
			break
		}
		d.Send(Prompt(d.View.Status()))
	}

	d.Send("\r\n" + Style(logoffLine, AnsiMagenta, AnsiBold) + "\r\n")
	close(d.Output)
	<-done
	if closer, ok := extra.(io.Closer); ok {
		_ = closer.Close()
	}
	s.logger.Info("designer disconnected", "designer", name, "remote", remote)
}

const (
	acceptBackoffStart = 50 * time.Millisecond
	acceptBackoffMax   = time.Second
)

var acceptSleep = time.Sleep

func acceptConnections(ln net.Listener, logger *slog.Logger, handle func(net.Conn)) error {
	backoff := acceptBackoffStart
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !isTemporaryAcceptError(err) {
				return err
			}
			logger.Warn("temporary accept error", "err", err, "retry_in", backoff)
			acceptSleep(backoff)
			backoff = min(backoff*2, acceptBackoffMax)
			continue
		}
		backoff = acceptBackoffStart
		handle(conn)
	}
}

func isTemporaryAcceptError(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) && temp.Temporary() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded) || strings.Contains(err.Error(), "too many open files")
}
