// Package gateway is the database gateway collaborator from spec.md §1: an
// opaque query(sql, params) → result surface that happens to reach a
// remote SQL Server through an optional SSH tunnel. MLS.Reconnect
// re-establishes the connection when called; no reconnect is triggered
// automatically. The core query engine only ever sees database.DB.
package gateway

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/Gobusters/ectologger"
	"golang.org/x/crypto/ssh"
)

// TunnelConfig describes the SSH jump host and the remote address it
// forwards to.
type TunnelConfig struct {
	Enabled        bool
	Host           string
	Port           int
	User           string
	PrivateKeyPath string
	RemoteAddr     string // host:port of the SQL Server behind the tunnel
}

// Tunnel forwards a local listener to RemoteAddr over an SSH connection.
type Tunnel struct {
	client   *ssh.Client
	listener net.Listener
	logger   ectologger.Logger
}

// Open dials the jump host, starts a local listener on an ephemeral port,
// and forwards every accepted connection to cfg.RemoteAddr. LocalAddr()
// gives the address the SQL Server driver should dial instead of the real
// remote address.
func Open(cfg TunnelConfig, logger ectologger.Logger) (*Tunnel, error) {
	key, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh private key: %w", err)
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), sshConfig)
	if err != nil {
		return nil, fmt.Errorf("dial ssh jump host: %w", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("listen local tunnel port: %w", err)
	}

	t := &Tunnel{client: client, listener: listener, logger: logger}
	go t.acceptLoop(cfg.RemoteAddr)
	return t, nil
}

func (t *Tunnel) acceptLoop(remoteAddr string) {
	for {
		local, err := t.listener.Accept()
		if err != nil {
			return // listener closed on Close()
		}
		go t.forward(local, remoteAddr)
	}
}

func (t *Tunnel) forward(local net.Conn, remoteAddr string) {
	defer local.Close()

	remote, err := t.client.Dial("tcp", remoteAddr)
	if err != nil {
		t.logger.WithError(err).Warn("ssh tunnel: failed to dial remote through jump host")
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go copyAndSignal(local, remote, done)
	go copyAndSignal(remote, local, done)
	<-done
}

func copyAndSignal(dst net.Conn, src net.Conn, done chan struct{}) {
	_, _ = io.Copy(dst, src)
	done <- struct{}{}
}

func (t *Tunnel) LocalAddr() string {
	return t.listener.Addr().String()
}

func (t *Tunnel) Close() error {
	_ = t.listener.Close()
	return t.client.Close()
}
