package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lavaflow/internal/core"
	"lavaflow/internal/session"
	"lavaflow/pkg/logger"
)

var (
	// ErrUnknownCommand reports a command type the hub does not handle.
	ErrUnknownCommand = errors.New("server: unknown command")
	// ErrUnknownParameter reports a set command the session rejected.
	ErrUnknownParameter = errors.New("server: unknown parameter")
)

type request struct {
	client *Client
	cmd    Command
}

// Hub owns the session. Every mutation and every tick happens on the Run
// goroutine; clients talk to it through channels.
type Hub struct {
	sess  *session.Session
	clock *core.FixedStep

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	requests   chan request
	done       chan struct{}

	log *logrus.Entry
}

// NewHub wraps sess, ticking it tps times per second once Run starts.
func NewHub(sess *session.Session, tps int) *Hub {
	return &Hub{
		sess:       sess,
		clock:      core.NewFixedStep(tps),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan request, 64),
		done:       make(chan struct{}),
		log:        logger.Component("hub"),
	}
}

// Run drives the session until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(h.clock.Step())
	defer ticker.Stop()
	defer func() {
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.WithField("clients", len(h.clients)).Info("client connected")
			h.sendTo(c, h.params())
			h.sendTo(c, h.frame())
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.WithField("clients", len(h.clients)).Info("client disconnected")
			}
		case req := <-h.requests:
			if err := h.apply(req.cmd); err != nil {
				h.log.WithError(err).WithField("command", req.cmd.Type).Warn("command rejected")
				h.sendTo(req.client, ErrorMessage{Type: "error", Command: req.cmd.Type, Error: err.Error()})
				continue
			}
			if req.cmd.Type == CmdSet {
				h.broadcast(h.params())
			}
		case <-ticker.C:
			if err := h.sess.Tick(h.clock.Seconds()); err != nil {
				h.log.WithError(err).Error("tick failed")
				continue
			}
			if len(h.clients) > 0 {
				h.broadcast(h.frame())
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// apply executes one command against the session.
func (h *Hub) apply(cmd Command) error {
	s := h.sess
	switch cmd.Type {
	case CmdInject:
		if cmd.Amount > 0 || cmd.Radius > 0 {
			t := s.TickConfig()
			amount, radius := t.InjectionAmount, t.InjectionRadius
			if cmd.Amount > 0 {
				amount = cmd.Amount
			}
			if cmd.Radius > 0 {
				radius = cmd.Radius
			}
			s.InjectWith(cmd.U, cmd.V, amount, radius)
			return nil
		}
		s.Inject(cmd.U, cmd.V)
	case CmdVent:
		s.PlaceVent(cmd.U, cmd.V)
	case CmdClearVents:
		s.ClearVents()
	case CmdVentsEnabled:
		s.SetVentsEnabled(cmd.Enabled)
	case CmdClear:
		s.Clear()
	case CmdPause:
		s.SetPaused(cmd.Enabled)
	case CmdStep:
		return s.Step(h.clock.Seconds())
	case CmdSet:
		var ok bool
		if cmd.Key == session.KeySize {
			ok = s.SetIntParameter(cmd.Key, int(cmd.Value))
		} else {
			ok = s.SetFloatParameter(cmd.Key, cmd.Value)
		}
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownParameter, cmd.Key)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Type)
	}
	return nil
}

func (h *Hub) frame() Frame {
	return newFrame(h.sess.Engine().Name(), h.sess.Ticks(), h.sess.Paused(), h.sess.Snapshot())
}

func (h *Hub) params() Params {
	return Params{
		Type:     "params",
		Snapshot: h.sess.Parameters(),
		Controls: h.sess.ParameterControls(),
	}
}

// broadcast marshals msg once and queues it on every client. Clients whose
// queue is full miss the message.
func (h *Hub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal failed")
		return
	}
	for c := range h.clients {
		h.queue(c, data)
	}
}

func (h *Hub) sendTo(c *Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal failed")
		return
	}
	h.queue(c, data)
}

func (h *Hub) queue(c *Client, data []byte) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.log.Debug("client queue full, dropping message")
	}
}
