// Package serial provides raw, line-oriented access to a Linux serial port.
//
// The port is configured for 8N1 raw mode. Reads are line-based with a
// per-read deadline; Close wakes any blocked read through a self-pipe, so
// shutdown never has to wait out a full read timeout.
package serial

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ErrTimeout is returned by ReadLine when no complete line arrives within
// the configured read timeout. The port is still usable afterwards.
var ErrTimeout = errors.New("serial: read timeout")

// ErrClosed is returned by ReadLine after Close has been called.
var ErrClosed = errors.New("serial: port closed")

// maxPending bounds the buffer of bytes not yet consumed as a line. A
// device streaming data with no delimiter (a baud mismatch produces
// exactly that) must not grow process memory; no valid line comes
// anywhere near this size.
const maxPending = 4096

// Config holds the parameters for opening a serial port.
type Config struct {
	Device      string
	BaudRate    int
	Delimiter   string // line terminator, e.g. "\r\n"
	ReadTimeout time.Duration
}

// Port is an open serial device. ReadLine and Flush must be called from a
// single goroutine; Close may be called concurrently to unblock a read.
type Port struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd

	pending string // bytes read but not yet consumed as a line
}

// Open opens the device and configures it for raw 8N1 operation at the
// configured baud rate.
func Open(cfg Config) (*Port, error) {
	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	baud, err := baudToUnix(cfg.BaudRate)
	if err != nil {
		syscall.Close(fd)
		return nil, err
	}
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: deliver bytes as soon as they arrive
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Back to blocking mode now that config is done
	syscall.SetNonblock(fd, false)

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &Port{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// Flush discards everything in the device's input and output queues,
// along with any partially buffered line.
func (p *Port) Flush() error {
	p.pending = ""
	if err := unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// ReadLine blocks until a complete line (terminated by the configured
// delimiter) is available and returns it without the delimiter. It returns
// ErrTimeout if no complete line arrives within the configured read timeout
// and ErrClosed if the port is closed while waiting. Bytes received beyond
// the returned line are kept for the next call.
func (p *Port) ReadLine() (string, error) {
	buf := make([]byte, 4096)
	deadline := time.Now().Add(p.config.ReadTimeout)
	for {
		if idx := strings.Index(p.pending, p.config.Delimiter); idx >= 0 {
			line := p.pending[:idx]
			p.pending = p.pending[idx+len(p.config.Delimiter):]
			return line, nil
		}

		waitMs := -1 // block indefinitely when no timeout is configured
		if p.config.ReadTimeout > 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return "", ErrTimeout
			}
			waitMs = int(remaining / time.Millisecond)
			if waitMs == 0 {
				waitMs = 1
			}
		}

		pfd := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		n, err := unix.Poll(pfd, waitMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return "", fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			// Poll rounds down to whole milliseconds; let the deadline
			// check above decide whether time is really up.
			continue
		}

		select {
		case <-p.done:
			return "", ErrClosed
		default:
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(p.pipeR, b[:])
			return "", ErrClosed
		}
		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			n, err := p.file.Read(buf)
			if err != nil {
				return "", err
			}
			p.pending += string(buf[:n])
			if len(p.pending) > maxPending {
				p.pending = p.pending[len(p.pending)-maxPending:]
			}
		}
	}
}

// Close closes the serial port and unblocks any in-flight ReadLine.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		// Wake up poll using the self-pipe
		unix.Write(p.pipeW, []byte{1})
		err = p.file.Close()
		unix.Close(p.pipeR)
		unix.Close(p.pipeW)
	})
	return err
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	default:
		return 0, fmt.Errorf("unsupported baud rate %d", baud)
	}
}
