//go:build linux || darwin

package terminal

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// startPTY starts a command with a PTY on Unix systems.
func startPTY(cmd *exec.Cmd, cols, rows uint16) (PTY, error) {
	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, err
	}

	return &unixPTY{master: master}, nil
}

// unixPTY implements PTY for Unix systems, backed by creack/pty.
type unixPTY struct {
	master *os.File
}

func (p *unixPTY) File() *os.File {
	return p.master
}

func (p *unixPTY) Read(buf []byte) (int, error) {
	return p.master.Read(buf)
}

func (p *unixPTY) Write(data []byte) (int, error) {
	return p.master.Write(data)
}

func (p *unixPTY) Resize(cols, rows uint16) error {
	return pty.Setsize(p.master, &pty.Winsize{Rows: rows, Cols: cols})
}

func (p *unixPTY) Close() error {
	return p.master.Close()
}
