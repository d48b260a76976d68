/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command opensand-rt-demo wires a two-block echo pipeline purely through
// the rt facade: block A's downward channel sends a payload on a timer,
// block B echoes it from its downward channel to its own upward channel,
// and block A's upward channel checks the round trip landed intact.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opensand/rt-go/logger"
	loglvl "github.com/opensand/rt-go/logger/level"
	"github.com/opensand/rt-go/rt"
	"github.com/opensand/rt-go/rt/channel"
	"github.com/opensand/rt-go/rt/event"
	"github.com/opensand/rt-go/rt/monitor"
)

const fifoDepth = 5

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		typeTag   uint8
		payloadHx string
		timerMs   int
		monAddr   string
	)

	cmd := &cobra.Command{
		Use:   "opensand-rt-demo",
		Short: "Run a two-block echo pipeline over the rt runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := hex.DecodeString(payloadHx)
			if err != nil {
				return fmt.Errorf("--payload-hex: %w", err)
			}
			return runEcho(typeTag, payload, timerMs, monAddr)
		},
	}

	flags := cmd.Flags()
	flags.Uint8Var(&typeTag, "type-tag", 7, "message type tag carried by the echoed payload")
	flags.StringVar(&payloadHx, "payload-hex", "010203", "hex-encoded payload to send through the pipeline")
	flags.IntVar(&timerMs, "timer-ms", 50, "delay before block A sends the payload downward")
	flags.StringVar(&monAddr, "monitor-addr", "", "if set, serve the debug HTTP monitor on this address")

	return cmd
}

// runEcho wires block A and block B, drives one message through the round
// trip, and reports whether the payload and type tag survived unchanged.
func runEcho(typeTag uint8, payload []byte, timerMs int, monAddr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.New(ctx)
	log.SetLevel(loglvl.InfoLevel)

	rtm := rt.New(ctx, log)

	result := make(chan error, 1)
	reportResult := func(err error) {
		select {
		case result <- err:
		default:
		}
	}

	report := func(blockName string) channel.ReportFunc {
		return func(channelName string, critical bool, err error) {
			rtm.ReportError(blockName, channelName, critical, fmt.Sprintf("%s: %v", channelName, err))
		}
	}

	sender := &senderHandler{typeTag: typeTag, payload: payload, timerMs: timerMs}
	aDown := channel.NewSimple("A.downward", channel.Downward, sender, report("A"))
	sender.ch = aDown

	verifier := &verifierHandler{typeTag: typeTag, payload: payload, done: reportResult}
	aUp := channel.NewSimple("A.upward", channel.Upward, verifier, report("A"))

	echoDown := &echoDownHandler{}
	bDown := channel.NewSimple("B.downward", channel.Downward, echoDown, report("B"))
	echoDown.ch = bDown

	echoUp := &echoUpHandler{}
	bUp := channel.NewSimple("B.upward", channel.Upward, echoUp, report("B"))
	echoUp.ch = bUp

	blockA, err := rtm.CreateBlock("A", nil, aUp, aDown, nil)
	if err != nil {
		return fmt.Errorf("create block A: %w", err)
	}
	blockB, err := rtm.CreateBlock("B", nil, bUp, bDown, nil)
	if err != nil {
		return fmt.Errorf("create block B: %w", err)
	}

	if err := rtm.ConnectBlocks(blockA, blockB, fifoDepth); err != nil {
		return fmt.Errorf("connect blocks: %w", err)
	}

	if monAddr != "" {
		go func() {
			if err := monitor.Serve(ctx, rtm.Manager(), monAddr); err != nil {
				log.Entry(loglvl.WarnLevel, "monitor server stopped").ErrorAdd(true, err).Log()
			}
		}()
	}

	go func() {
		err := <-result
		if err != nil {
			log.Entry(loglvl.ErrorLevel, "echo pipeline failed").ErrorAdd(true, err).Log()
		} else {
			fmt.Println("echo pipeline OK: payload and type tag round-tripped unchanged")
		}
		// Dispatched asynchronously: this goroutine is not one of the
		// channels' own event loops, so Stop can safely wait for all of
		// them (including A.upward, which sent on result) to exit without
		// deadlocking on its own caller.
		_ = rtm.Stop()
	}()

	ok := rtm.Run(true)
	if !ok {
		return fmt.Errorf("echo pipeline: manager reported failure")
	}
	return nil
}

// senderHandler lives on A's downward channel: once its one-shot timer
// fires, it pushes the configured payload downward towards B.
type senderHandler struct {
	typeTag uint8
	payload []byte
	timerMs int

	ch channel.Channel
}

func (h *senderHandler) OnInit() bool {
	_, err := h.ch.AddTimerEvent("send", time.Duration(h.timerMs)*time.Millisecond, false, true, event.PriorityTimer)
	return err == nil
}

func (h *senderHandler) OnEvent(ev event.Event) bool {
	if _, ok := ev.(*event.TimerEvent); !ok {
		return true
	}
	return h.ch.EnqueueMessage(context.Background(), h.typeTag, h.payload) == nil
}

// echoDownHandler lives on B's downward channel: on message arrival it
// shares the message across to B's own upward channel.
type echoDownHandler struct {
	ch channel.Channel
}

func (h *echoDownHandler) OnInit() bool { return true }

func (h *echoDownHandler) OnEvent(ev event.Event) bool {
	m, ok := ev.(*event.MessageEvent)
	if !ok {
		return true
	}
	msg := m.Message()
	return h.ch.ShareMessage(context.Background(), msg.Type, msg.Data) == nil
}

// echoUpHandler lives on B's upward channel: on message arrival (from the
// opposite-channel share) it pushes the message upward towards A.
type echoUpHandler struct {
	ch channel.Channel
}

func (h *echoUpHandler) OnInit() bool { return true }

func (h *echoUpHandler) OnEvent(ev event.Event) bool {
	m, ok := ev.(*event.MessageEvent)
	if !ok {
		return true
	}
	msg := m.Message()
	return h.ch.EnqueueMessage(context.Background(), msg.Type, msg.Data) == nil
}

// verifierHandler lives on A's upward channel: on message arrival it checks
// the round trip preserved type and payload, then reports the outcome.
type verifierHandler struct {
	typeTag uint8
	payload []byte
	done    func(err error)
}

func (h *verifierHandler) OnInit() bool { return true }

func (h *verifierHandler) OnEvent(ev event.Event) bool {
	m, ok := ev.(*event.MessageEvent)
	if !ok {
		return true
	}
	msg := m.Message()

	if msg.Type != h.typeTag {
		h.done(fmt.Errorf("type tag mismatch: got %d, want %d", msg.Type, h.typeTag))
		return true
	}
	if !bytes.Equal(msg.Data, h.payload) {
		h.done(fmt.Errorf("payload mismatch: got %x, want %x", msg.Data, h.payload))
		return true
	}
	h.done(nil)
	return true
}
