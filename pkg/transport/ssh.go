// Package transport implements the interactive SSH shell used to poll
// network device CLIs. It opens a real shell (not exec mode, which most
// network OSes reject), auto-detects the prompt, filters ANSI escapes,
// disables pagination, and executes commands up to the next prompt.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/vantage-net/vantage/pkg/devicemodel"
	"github.com/vantage-net/vantage/pkg/util"
)

// legacyKexAlgos, legacyCiphers, and legacyHostKeyAlgos list the older
// algorithm suites still found on network gear that predates modern crypto
// policy. With Config.Legacy set they become the client's whole KEX, cipher
// and host-key lists, replacing the Go ssh package's defaults rather than
// adding to them.
var (
	legacyKexAlgos = []string{
		"diffie-hellman-group-exchange-sha256",
		"diffie-hellman-group-exchange-sha1",
		"diffie-hellman-group14-sha256",
		"diffie-hellman-group14-sha1",
		"diffie-hellman-group1-sha1",
	}
	legacyCiphers = []string{
		"aes128-ctr", "aes192-ctr", "aes256-ctr",
		"aes128-cbc", "aes192-cbc", "aes256-cbc",
		"3des-cbc",
	}
	legacyHostKeyAlgos = []string{
		"ssh-rsa", "rsa-sha2-256", "rsa-sha2-512",
		"ssh-dss", "ecdsa-sha2-nistp256",
	}
)

// Config configures a Transport's connection and command-execution behavior.
type Config struct {
	ConnectTimeout      time.Duration // default 30s
	ShellReadTimeout    time.Duration // default 5s, per-read quiescence window
	InterCommandDelay   time.Duration // default 1s
	ExpectPromptTimeout time.Duration // default 5s, overall wait for a command's prompt
	Legacy              bool          // enable legacy KEX/cipher/host-key algorithms
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
	if c.ShellReadTimeout == 0 {
		c.ShellReadTimeout = 5 * time.Second
	}
	if c.InterCommandDelay == 0 {
		c.InterCommandDelay = 1 * time.Second
	}
	if c.ExpectPromptTimeout == 0 {
		c.ExpectPromptTimeout = 5 * time.Second
	}
	return c
}

// Transport owns one interactive SSH shell session for the lifetime of a
// device poll. It is not safe for concurrent use — the poll engine's single
// worker per device is the only caller.
type Transport struct {
	cfg    Config
	client *ssh.Client
	sess   *ssh.Session
	stdin  io.WriteCloser
	stdout io.Reader

	expectPrompt string
	pumpState    *pump
}

// New dials the device, opens an interactive shell, and returns a connected
// Transport. Connect failure is always fatal to the caller.
func New(dev *devicemodel.Device, creds *devicemodel.Credentials, cfg Config) (*Transport, error) {
	cfg = cfg.withDefaults()

	auth, err := authMethods(creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrTransportFatal, err)
	}

	sshCfg := &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         cfg.ConnectTimeout,
	}
	if cfg.Legacy {
		sshCfg.Config.KeyExchanges = append(sshCfg.Config.KeyExchanges, legacyKexAlgos...)
		sshCfg.Config.Ciphers = append(sshCfg.Config.Ciphers, legacyCiphers...)
		sshCfg.HostKeyAlgorithms = append(sshCfg.HostKeyAlgorithms, legacyHostKeyAlgos...)
	}

	client, err := dialMaybeViaJump(dev, creds, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %s", util.ErrTransportFatal, dev.Hostname, err)
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: new session: %s", util.ErrTransportFatal, err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("%w: stdin pipe: %s", util.ErrTransportFatal, err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("%w: stdout pipe: %s", util.ErrTransportFatal, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 115200,
		ssh.TTY_OP_OSPEED: 115200,
	}
	if err := sess.RequestPty("vt100", 0, 500, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("%w: request pty: %s", util.ErrTransportFatal, err)
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("%w: start shell: %s", util.ErrTransportFatal, err)
	}

	t := &Transport{
		cfg:    cfg,
		client: client,
		sess:   sess,
		stdin:  stdin,
		stdout: stdout,
	}
	return t, nil
}

func authMethods(creds *devicemodel.Credentials) ([]ssh.AuthMethod, error) {
	switch creds.AuthMethod() {
	case "password":
		return []ssh.AuthMethod{ssh.Password(creds.Password)}, nil
	case "key-file", "key-memory":
		signer, err := loadSigner(creds)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case "agent":
		return nil, fmt.Errorf("ssh-agent auth requires a live agent socket, not wired in this build")
	default:
		return nil, fmt.Errorf("no auth method set on credentials")
	}
}

// Close tears down the shell and the underlying SSH connection.
func (t *Transport) Close() error {
	if t.sess != nil {
		t.sess.Close()
	}
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// FindPrompt drains the initial banner, sends a bare newline, reads until
// the shell is quiescent, and returns the detected prompt. It retries up to
// attempts times before falling back to "#".
func (t *Transport) FindPrompt(attempts int, timeout time.Duration) string {
	if attempts <= 0 {
		attempts = 1
	}
	if timeout == 0 {
		timeout = t.cfg.ShellReadTimeout
	}

	var last string
	for i := 0; i < attempts; i++ {
		t.stdin.Write([]byte("\n"))
		out := t.readQuiescent(timeout)
		last = detectPrompt(out)
		if last != "#" {
			break
		}
	}
	t.expectPrompt = last
	return last
}

// SetExpectPrompt overrides the token Execute waits for. Used after prompt
// changes (e.g. pagination disable can lengthen the prompt on some vendors).
func (t *Transport) SetExpectPrompt(p string) {
	t.expectPrompt = p
}

// ExtractHostname derives the device's self-reported hostname from the
// detected prompt.
func (t *Transport) ExtractHostname(prompt string) string {
	return extractHostname(prompt)
}

// DisablePagination asks the vendor for its pagination command; if empty, it
// fires the shotgun list and discards every response (wrong commands just
// produce harmless CLI errors on platforms they don't apply to).
func (t *Transport) DisablePagination(vendorCmd string) {
	if vendorCmd != "" {
		t.Execute(vendorCmd)
		prompt := t.FindPrompt(2, 3*time.Second)
		t.SetExpectPrompt(prompt)
		return
	}
	for _, cmd := range shotgunPagination {
		t.Execute(cmd)
	}
}

// Execute sends one or more comma-separated commands and returns the
// accumulated, ANSI-filtered output for the last command run. Each command
// is sent with a trailing newline; output accumulates until the expect
// prompt appears or the per-command timeout elapses. A read timeout on a
// single command is not fatal — whatever accumulated is returned and the
// session remains usable for the next command.
func (t *Transport) Execute(commands string) string {
	var last string
	for i, cmd := range strings.Split(commands, ",") {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if i > 0 {
			time.Sleep(t.cfg.InterCommandDelay)
		}
		last = t.runOne(cmd)
	}
	return last
}

func (t *Transport) runOne(cmd string) string {
	t.stdin.Write([]byte(cmd + "\n"))
	return t.readUntilPrompt(t.cfg.ExpectPromptTimeout)
}

// readUntilPrompt reads from stdout until expectPrompt is seen in the
// accumulated, filtered buffer or timeout elapses.
func (t *Transport) readUntilPrompt(timeout time.Duration) string {
	deadline := time.Now().Add(timeout)
	var buf bytes.Buffer
	chunk := make([]byte, 4096)

	for time.Now().Before(deadline) {
		n, err := t.readWithTimeout(chunk, 200*time.Millisecond)
		if n > 0 {
			buf.Write(chunk[:n])
			filtered := filterANSI(buf.String())
			if t.expectPrompt != "" && strings.Contains(filtered, t.expectPrompt) {
				return filtered
			}
		}
		if err != nil && err != errReadTimeout {
			break // transport loss — caller observes on next send
		}
	}
	return filterANSI(buf.String())
}

// readQuiescent reads until no new data arrives for one read-timeout window.
func (t *Transport) readQuiescent(timeout time.Duration) string {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, err := t.readWithTimeout(chunk, timeout)
		if n > 0 {
			buf.Write(chunk[:n])
			continue
		}
		if err != nil {
			break
		}
	}
	return filterANSI(buf.String())
}
