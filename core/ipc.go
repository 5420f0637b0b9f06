package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/encodeous/nlsr/state"
)

const ipcTimeout = 5 * time.Second

// IPCGet sends cmd to the router listening on socket and returns its reply
func IPCGet(socket string, cmd string) (string, error) {
	conn, err := net.DialTimeout("unix", socket, ipcTimeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ipcTimeout))
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	_, err = rw.WriteString(cmd + "\n")
	if err != nil {
		return "", err
	}
	err = rw.Flush()
	if err != nil {
		return "", err
	}

	res, err := rw.ReadString(0)
	if err != nil && err != io.EOF {
		return "", err
	}
	res = strings.TrimSuffix(res, "\x00")
	if msg, ok := strings.CutPrefix(res, "error: "); ok {
		return "", errors.New(strings.TrimSpace(msg))
	}
	return res, nil
}

// ControlSocket answers inspection requests over a unix socket
type ControlSocket struct {
	listener net.Listener
	wg       sync.WaitGroup
}

func (c *ControlSocket) Init(s *state.State) error {
	if s.ControlSocket == "" {
		return nil
	}
	_ = os.Remove(s.ControlSocket)
	l, err := net.Listen("unix", s.ControlSocket)
	if err != nil {
		return fmt.Errorf("failed to listen on control socket: %w", err)
	}
	c.listener = l
	s.Log.Info("listening on control socket", "path", s.ControlSocket)
	c.wg.Add(1)
	go c.accept(s.Env)
	return nil
}

func (c *ControlSocket) Cleanup(s *state.State) error {
	if c.listener == nil {
		return nil
	}
	err := c.listener.Close()
	c.wg.Wait()
	return err
}

func (c *ControlSocket) accept(e *state.Env) {
	defer c.wg.Done()
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			return
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			defer conn.Close()
			_ = conn.SetDeadline(time.Now().Add(ipcTimeout))
			rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
			err := c.serve(e, rw)
			if err != nil {
				e.Log.Debug("control request failed", "error", err)
				_, _ = rw.WriteString("error: " + err.Error() + "\n\x00")
			}
			_ = rw.Flush()
		}()
	}
}

func (c *ControlSocket) serve(e *state.Env, rw *bufio.ReadWriter) error {
	cmd, err := rw.ReadString('\n')
	if err != nil {
		return err
	}
	// a bad request must not fail the dispatch, that would stop the router
	res, err := e.DispatchWait(func(s *state.State) (any, error) {
		out, err := HandleIPCCommand(s, strings.TrimSpace(cmd))
		return state.Pair[string, error]{V1: out, V2: err}, nil
	})
	if err != nil {
		return err
	}
	reply := res.(state.Pair[string, error])
	if reply.V2 != nil {
		return reply.V2
	}
	_, err = rw.WriteString(reply.V1 + "\x00")
	return err
}

// HandleIPCCommand renders the state requested by cmd. It must run on the dispatch goroutine.
func HandleIPCCommand(s *state.State, cmd string) (string, error) {
	r := Get[*NlsrRouter](s)
	if verb, arg, ok := strings.Cut(cmd, " "); ok {
		return handlePrefixCommand(s, r, verb, strings.TrimSpace(arg))
	}
	sb := strings.Builder{}
	switch cmd {
	case "adjacencies":
		sb.WriteString(RenderAdjacencies(s.Adjacencies))
	case "lsdb":
		sb.WriteString(RenderLsdb(r.Lsdb))
	case "routes":
		sb.WriteString(RenderRoutingTable(r.Rt.Entries()))
	case "prefixes":
		sb.WriteString(RenderNamePrefixTable(r.Npt.Entries()))
	case "fib":
		f, ok := r.Fib.(*ForwardingTable)
		if !ok {
			return "", fmt.Errorf("fib is not inspectable")
		}
		sb.WriteString(RenderFib(f.Entries()))
	case "inspect":
		sb.WriteString(fmt.Sprintf("Router: %s\n", s.Router))
		sb.WriteString("\nAdjacencies:\n")
		sb.WriteString(RenderAdjacencies(s.Adjacencies))
		sb.WriteString("\nLSDB:\n")
		sb.WriteString(RenderLsdb(r.Lsdb))
		sb.WriteString("\nRouting Table:\n")
		sb.WriteString(RenderRoutingTable(r.Rt.Entries()))
		if s.Hyperbolic == state.HyperbolicDryRun {
			sb.WriteString("\nDry-run Routing Table:\n")
			sb.WriteString(RenderRoutingTable(r.Rt.DryRunEntries()))
		}
		sb.WriteString("\nName Prefix Table:\n")
		sb.WriteString(RenderNamePrefixTable(r.Npt.Entries()))
	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
	return sb.String(), nil
}

// handlePrefixCommand handles "advertise <prefix>" and "withdraw <prefix>"
func handlePrefixCommand(s *state.State, r *NlsrRouter, verb string, arg string) (string, error) {
	var (
		changed bool
		err     error
	)
	prefix, err := state.ParseName(arg)
	if err != nil {
		return "", err
	}
	switch verb {
	case "advertise":
		changed, err = r.Advertise(s, prefix)
		if err != nil {
			return "", err
		}
		if !changed {
			return fmt.Sprintf("%s is already advertised\n", prefix), nil
		}
		return fmt.Sprintf("advertised %s\n", prefix), nil
	case "withdraw":
		changed, err = r.Withdraw(s, prefix)
		if err != nil {
			return "", err
		}
		if !changed {
			return fmt.Sprintf("%s is not advertised\n", prefix), nil
		}
		return fmt.Sprintf("withdrew %s\n", prefix), nil
	default:
		return "", fmt.Errorf("unknown command %q", verb)
	}
}
