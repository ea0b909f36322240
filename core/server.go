package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/nopwsh/core/config"
	"github.com/josephlewis42/nopwsh/core/logger"
	gossh "golang.org/x/crypto/ssh"
)

// ServerVersion is the SSH version advertised to clients.
const ServerVersion = "OpenSSH_for_Windows_8.1"

type sshContextKey struct {
	name string
}

var (
	// ContextAuthPublicKey holds the public key that the client sent to the
	// server. Useful for fingerprinting.
	ContextAuthPublicKey = sshContextKey{"auth-public-key"}
	// ContextAuthPassword holds the password the client sent to the server.
	ContextAuthPassword = sshContextKey{"auth-password"}
)

// Server exposes the interpreter over SSH. Each session gets its own shell,
// or runs a single line if the client sent a command.
type Server struct {
	configuration *config.Configuration
	interpreter   *Interpreter
	events        *logger.Logger
	log           *log.Logger
	sshServer     *ssh.Server
}

func NewServer(configuration *config.Configuration, interpreter *Interpreter, events *logger.Logger, diag *log.Logger) (*Server, error) {
	if diag == nil {
		diag = log.New(io.Discard)
	}

	server := &Server{
		configuration: configuration,
		interpreter:   interpreter,
		events:        events,
		log:           diag,
	}

	server.sshServer = &ssh.Server{
		Addr:    fmt.Sprintf(":%d", configuration.SSHPort),
		Version: ServerVersion,
		Handler: func(s ssh.Session) {
			if err := server.HandleConnection(s); err != nil {
				server.log.Error("session failed", "user", s.User(), "remote_addr", s.RemoteAddr(), "err", err)
			}
		},
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			ctx.SetValue(ContextAuthPublicKey, key.Marshal())
			return false
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			ctx.SetValue(ContextAuthPassword, password)
			if server.checkPassword(ctx.User(), password) {
				return true
			}

			server.events.Sessionless().Record(&logger.LoginAttempt{
				Result:     logger.OperationResultFailure,
				Username:   ctx.User(),
				Password:   password,
				RemoteAddr: fmt.Sprintf("%s", ctx.RemoteAddr()),
			})
			return false
		},
	}

	keyPem, err := configuration.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(keyPem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

func (s *Server) checkPassword(username, password string) bool {
	ok := false
	for _, allowed := range s.configuration.GetPasswords(username) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(allowed)) == 1 {
			ok = true
		}
	}
	return ok
}

func (s *Server) HandleConnection(session ssh.Session) error {
	sessionLogger := s.events.NewSession()

	publicKey, _ := session.Context().Value(ContextAuthPublicKey).([]byte)
	password, _ := session.Context().Value(ContextAuthPassword).(string)
	sessionLogger.Record(&logger.LoginAttempt{
		Result:     logger.OperationResultSuccess,
		Username:   session.User(),
		Password:   password,
		PublicKey:  publicKey,
		RemoteAddr: fmt.Sprintf("%s", session.RemoteAddr()),
		RawCommand: session.RawCommand(),
	})
	s.log.Info("session started", "user", session.User(), "remote_addr", session.RemoteAddr(), "session", sessionLogger.SessionID())

	ptyInfo, winch, isPTY := session.Pty()

	interpreter := *s.interpreter
	interpreter.Color = isPTY

	// Single command, e.g. ssh host 'Get-ADComputer -Filter *'
	if raw := session.RawCommand(); raw != "" {
		status := interpreter.Run(raw, session, session.Stderr(), sessionLogger)
		return session.Exit(status)
	}

	if banner := s.configuration.SSHBanner; banner != "" {
		fmt.Fprintln(session, banner)
	}

	// Watch for window changes.
	var width atomic.Int32
	width.Store(int32(ptyInfo.Window.Width))
	go (func() {
		for window := range winch {
			width.Store(int32(window.Width))
		}
	})()

	var stderr io.Writer = session.Stderr()
	if isPTY {
		stderr = session
	}

	shell, err := NewShell(&interpreter, s.configuration.PromptFor(session.User()), Terminal{
		Stdin:      session,
		Stdout:     session,
		Stderr:     stderr,
		IsTerminal: isPTY,
		Width: func() int {
			return int(width.Load())
		},
	}, sessionLogger)
	if err != nil {
		session.Exit(1)
		return err
	}
	defer shell.Close()

	shell.Run()

	return session.Exit(0)
}

func (s *Server) ListenAndServe() error {
	s.log.Info("starting SSH server", "addr", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Serve accepts connections on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.log.Info("starting SSH server", "addr", l.Addr())
	return s.sshServer.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
