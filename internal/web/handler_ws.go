package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/creack/pty"
)

type resizeMsg struct {
	Type string `json:"type"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

func (s *Server) tuiCommand() (string, []string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", nil, err
	}
	return exe, []string{"tui", "--server", s.apiAddr}, nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("remote", r.RemoteAddr))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Warn("websocket accept failed", slog.Any("error", err))
		return
	}
	defer conn.CloseNow()

	cols := parseUint16(r.URL.Query().Get("cols"), 80)
	rows := parseUint16(r.URL.Query().Get("rows"), 24)

	name, args, err := s.command()
	if err != nil {
		log.Error("cannot build terminal command", slog.Any("error", err))
		conn.Close(websocket.StatusInternalError, "cannot find executable")
		return
	}

	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		log.Error("pty start failed", slog.Any("error", err))
		conn.Close(websocket.StatusInternalError, "failed to start pty")
		return
	}
	log.Info("terminal started", slog.Int("pid", cmd.Process.Pid))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var once sync.Once
	cleanup := func() {
		cancel()
		ptmx.Close()
		if cmd.Process != nil {
			cmd.Process.Kill()
			cmd.Wait()
		}
		log.Info("terminal stopped")
	}
	defer once.Do(cleanup)

	// PTY -> WebSocket (binary frames to avoid UTF-8 validation issues)
	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := ptmx.Read(buf)
			if err != nil {
				log.Debug("pty read", slog.Any("error", err))
				once.Do(cleanup)
				conn.Close(websocket.StatusNormalClosure, "process exited")
				return
			}
			if err := conn.Write(ctx, websocket.MessageBinary, buf[:n]); err != nil {
				log.Debug("ws write", slog.Any("error", err))
				once.Do(cleanup)
				return
			}
		}
	}()

	// WebSocket -> PTY
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Debug("ws read", slog.Any("error", err))
			return
		}

		if resize, ok := parseResize(data); ok {
			pty.Setsize(ptmx, &pty.Winsize{Rows: resize.Rows, Cols: resize.Cols})
			continue
		}

		if _, err := ptmx.Write(data); err != nil {
			return
		}
	}
}

// parseResize recognises the {"type":"resize"} control message sent by the
// page when the terminal is resized. Anything else is keyboard input.
func parseResize(data []byte) (resizeMsg, bool) {
	if !strings.HasPrefix(string(data), "{") {
		return resizeMsg{}, false
	}
	var resize resizeMsg
	if json.Unmarshal(data, &resize) != nil || resize.Type != "resize" {
		return resizeMsg{}, false
	}
	if resize.Cols == 0 || resize.Rows == 0 {
		return resizeMsg{}, false
	}
	return resize, true
}

func parseUint16(s string, def uint16) uint16 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return def
	}
	return uint16(v)
}
