package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/netkitd/netkitd/internal/bufpool"
	"github.com/netkitd/netkitd/internal/logger"
	"github.com/netkitd/netkitd/internal/nfs4/compound"
	"github.com/netkitd/netkitd/internal/nfs4/types"
	"github.com/netkitd/netkitd/internal/rpc"
)

// NFSv4 procedure numbers: every NFSv4 call is either NULL or COMPOUND,
// RFC 7530 section 1.1.1.
const (
	procNull     uint32 = 0
	procCompound uint32 = 1
)

// Connection serves one client's NFSv4 TCP connection: it reads RPC
// calls in order, processes each synchronously to preserve the client's
// intended ordering of dependent operations, and serializes replies.
type Connection struct {
	server     *Server
	conn       net.Conn
	requestSem chan struct{}
	wg         sync.WaitGroup
	writeMu    sync.Mutex
}

// NewConnection wraps conn for service by server.
func NewConnection(server *Server, conn net.Conn) *Connection {
	return &Connection{
		server:     server,
		conn:       conn,
		requestSem: make(chan struct{}, server.config.MaxRequestsPerConnection),
	}
}

// Serve processes RPC calls until the client disconnects, ctx is
// cancelled, or the server is shut down.
func (c *Connection) Serve(ctx context.Context) {
	defer c.handleConnectionClose()

	clientAddr := c.conn.RemoteAddr().String()
	logger.Debug("nfs connection accepted", "address", clientAddr)

	if c.server.config.Timeouts.Idle > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.server.config.Timeouts.Idle))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.server.shutdown:
			return
		default:
		}

		call, message, err := c.readRequest(ctx)
		if err != nil {
			if err != io.EOF {
				logger.Debug("nfs connection read error", "address", clientAddr, "error", err)
			}
			return
		}

		c.requestSem <- struct{}{}
		c.wg.Add(1)
		func(call *rpc.RPCCallMessage, message []byte) {
			defer c.handleRequestPanic(clientAddr, call.XID)
			defer bufpool.Put(message)

			if err := c.processRequest(ctx, call, message, clientAddr); err != nil {
				logger.Debug("nfs request processing error", "address", clientAddr, "xid", fmt.Sprintf("0x%x", call.XID), "error", err)
			}
		}(call, message)

		if c.server.config.Timeouts.Idle > 0 {
			_ = c.conn.SetDeadline(time.Now().Add(c.server.config.Timeouts.Idle))
		}
	}
}

func (c *Connection) readRequest(ctx context.Context) (*rpc.RPCCallMessage, []byte, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	if c.server.config.Timeouts.Read > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.server.config.Timeouts.Read)); err != nil {
			return nil, nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	message, err := rpc.ReadMessage(c.conn)
	if err != nil {
		return nil, nil, err
	}

	call, err := rpc.ReadCall(message)
	if err != nil {
		bufpool.Put(message)
		return nil, nil, fmt.Errorf("read call: %w", err)
	}
	return call, message, nil
}

func (c *Connection) processRequest(ctx context.Context, call *rpc.RPCCallMessage, message []byte, clientAddr string) error {
	if call.Program != nfsProgram {
		return c.writeReply(rpcError(call, rpc.RPCProgUnavail))
	}
	if call.Version != nfsVersion {
		reply, err := rpc.MakeProgMismatchReply(call.XID, nfsVersion, nfsVersion)
		if err != nil {
			return fmt.Errorf("make prog mismatch reply: %w", err)
		}
		return c.writeReply(reply, nil)
	}

	switch call.Procedure {
	case procNull:
		reply, err := rpc.MakeSuccessReply(call.XID, nil)
		if err != nil {
			return fmt.Errorf("make null reply: %w", err)
		}
		return c.writeReply(reply, nil)
	case procCompound:
		return c.handleCompound(ctx, call, message, clientAddr)
	default:
		return c.writeReply(rpcError(call, rpc.RPCProcUnavail))
	}
}

func (c *Connection) handleCompound(ctx context.Context, call *rpc.RPCCallMessage, message []byte, clientAddr string) error {
	body, err := rpc.ReadData(message, call)
	if err != nil {
		return fmt.Errorf("read compound body: %w", err)
	}
	r := bytes.NewReader(body)

	tag, minorVersion, err := readCompoundHeader(r)
	if err != nil {
		reply, mkErr := rpc.MakeAcceptedErrorReply(call.XID, rpc.RPCGarbageArgs)
		if mkErr != nil {
			return mkErr
		}
		return c.writeReply(reply, nil)
	}
	if minorVersion != 0 {
		resultBody, err := compound.EncodeResults(types.NFS4ERR_ERROR, tag, nil)
		if err != nil {
			return fmt.Errorf("encode minor version mismatch: %w", err)
		}
		reply, err := rpc.MakeSuccessReply(call.XID, resultBody)
		if err != nil {
			return fmt.Errorf("make minor version mismatch reply: %w", err)
		}
		return c.writeReply(reply, nil)
	}

	credential := decodeCredential(call)

	cctx := &types.CompoundContext{
		Ctx:        ctx,
		ClientAddr: clientAddr,
		Credential: credential,
		Handles:    c.server.handles,
		States:     c.server.states,
		Export:     c.server.config.Export,
	}

	start := time.Now()
	status, results, err := compound.Execute(cctx, c.server.dispatch, r)
	if err != nil {
		reply, mkErr := rpc.MakeAcceptedErrorReply(call.XID, rpc.RPCGarbageArgs)
		if mkErr != nil {
			return mkErr
		}
		return c.writeReply(reply, nil)
	}

	if c.server.metrics != nil {
		c.server.metrics.RecordCompound(time.Since(start), statusName(status))
		for _, r := range results {
			c.server.metrics.RecordOperation(opName(r.OpCode), statusName(r.Status))
		}
	}

	resultBody, err := compound.EncodeResults(status, tag, results)
	if err != nil {
		return fmt.Errorf("encode compound results: %w", err)
	}
	reply, err := rpc.MakeSuccessReply(call.XID, resultBody)
	if err != nil {
		return fmt.Errorf("make compound reply: %w", err)
	}
	return c.writeReply(reply, nil)
}

func (c *Connection) writeReply(reply []byte, err error) error {
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.server.config.Timeouts.Write > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.server.config.Timeouts.Write))
	}
	_, werr := c.conn.Write(reply)
	return werr
}

func rpcError(call *rpc.RPCCallMessage, acceptStat uint32) ([]byte, error) {
	return rpc.MakeAcceptedErrorReply(call.XID, acceptStat)
}

func (c *Connection) handleConnectionClose() {
	if r := recover(); r != nil {
		logger.Error("panic in nfs connection handler", "address", c.conn.RemoteAddr().String(), "error", r, "stack", string(debug.Stack()))
	}
	c.wg.Wait()
	_ = c.conn.Close()
}

func (c *Connection) handleRequestPanic(clientAddr string, xid uint32) {
	<-c.requestSem
	c.wg.Done()
	if r := recover(); r != nil {
		logger.Error("panic in nfs request handler", "address", clientAddr, "xid", fmt.Sprintf("0x%x", xid), "error", r, "stack", string(debug.Stack()))
	}
}
