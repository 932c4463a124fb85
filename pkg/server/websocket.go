package server

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/dropzone/pkg/protocol"
)

// ReadLoop reads frames from the WebSocket until it fails or the session
// closes.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.handleMessage(msg)
	}
}

// handleMessage decodes one frame and acts on it.
func (s *Session) handleMessage(msg []byte) {
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		s.logger.Warn("frame decode error", "error", err)
		s.sendErrorMessage(protocol.ErrInvalidFrame, "Invalid frame")
		return
	}

	switch frame.Type {
	case protocol.FrameEvent:
		s.handleEventFrame(frame.Payload)
	case protocol.FrameControl:
		s.handleControlFrame(frame.Payload)
	default:
		s.logger.Warn("unexpected frame type", "type", frame.Type)
	}
}

// handleEventFrame decodes and queues an event from the client.
func (s *Session) handleEventFrame(payload []byte) {
	event, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.sendErrorMessage(protocol.ErrInvalidEvent, "Invalid event format")
		return
	}

	if err := s.QueueEvent(event); err != nil {
		s.sendErrorMessage(protocol.ErrRateLimited, "Event queue full")
	}
}

// handleControlFrame handles ping, pong and close.
func (s *Session) handleControlFrame(payload []byte) {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return
	}

	switch c.Type {
	case protocol.ControlPing:
		s.sendControl(protocol.NewPong(c.Timestamp))
	case protocol.ControlPong:
		s.logger.Debug("received pong")
	case protocol.ControlClose:
		s.logger.Info("client closing", "reason", c.Reason, "message", c.Message)
		s.Close()
	}
}

// EventLoop runs events and dispatched callbacks until the session closes.
// It is the only goroutine that touches the widget.
func (s *Session) EventLoop() {
	defer s.widget.Close()

	for {
		select {
		case event := <-s.events:
			s.handleEvent(event)
		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)
		case <-s.done:
			return
		}
	}
}

// WriteLoop sends heartbeats until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendControl(protocol.NewPing(uint64(time.Now().UnixMilli()))); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Start starts all session loops.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// SendPatches encodes and sends one patches frame.
func (s *Session) SendPatches(patches []protocol.Patch) error {
	pf := &protocol.PatchesFrame{
		Seq:     s.sendSeq.Add(1),
		Patches: patches,
	}
	if err := s.writeFrame(protocol.FramePatches, protocol.EncodePatches(pf)); err != nil {
		s.logger.Error("write patches", "error", err, "count", len(patches))
		return err
	}

	s.patchCount.Add(uint64(len(patches)))
	if s.observer != nil {
		s.observer.PatchesSent(len(patches))
	}
	s.logger.Debug("sent patches", "seq", pf.Seq, "count", len(patches))
	return nil
}

// SendClose tells the client why the session ends, then closes it.
func (s *Session) SendClose(reason protocol.CloseReason, message string) {
	_ = s.sendControl(protocol.NewClose(reason, message))
	s.Close()
}

func (s *Session) sendControl(c *protocol.Control) error {
	return s.writeFrame(protocol.FrameControl, protocol.EncodeControl(c))
}

// sendErrorMessage sends a non-fatal error frame to the client.
func (s *Session) sendErrorMessage(code protocol.ErrorCode, message string) {
	payload := protocol.EncodeErrorMessage(protocol.NewError(code, message))
	if err := s.writeFrame(protocol.FrameError, payload); err != nil {
		s.logger.Warn("write error frame", "code", code, "error", err)
	}
}

// writeFrame serializes writes to the connection.
func (s *Session) writeFrame(ft protocol.FrameType, payload []byte) error {
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("server: session %s: write: %w", s.ID, err)
	}
	return nil
}
