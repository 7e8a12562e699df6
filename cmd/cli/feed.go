package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var (
		tcpAddr string
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Follow album changes as they are merged",
		Long:  "Follow album changes over the API websocket, or over the TCP feed when --tcp is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tcpAddr != "" {
				return followTCP(cmd.Context(), tcpAddr, cmd.OutOrStdout(), pretty)
			}
			wsURL, err := websocketURL(ctx.baseURL, "/ws")
			if err != nil {
				return err
			}
			return followWebSocket(cmd.Context(), wsURL, cmd.OutOrStdout(), pretty)
		},
	}
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP feed address (host:port)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON events")
	return cmd
}

func followTCP(ctx context.Context, addr string, out io.Writer, pretty bool) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		printEvent(out, sc.Bytes(), pretty)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return sc.Err()
}

func followWebSocket(ctx context.Context, wsURL string, out io.Writer, pretty bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		printEvent(out, msg, pretty)
	}
}

func printEvent(out io.Writer, line []byte, pretty bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	if !pretty {
		fmt.Fprintln(out, string(line))
		return
	}
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		fmt.Fprintln(out, string(line))
		return
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	fmt.Fprintln(out, string(b))
}
