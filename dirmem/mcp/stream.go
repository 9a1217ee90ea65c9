package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"go.lsp.dev/jsonrpc2"
)

// lineStream frames JSON-RPC messages one per line, as MCP does on stdio.
type lineStream struct {
	in     *bufio.Reader
	closer io.Closer
	out    io.Writer
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewLineStream returns a jsonrpc2.Stream reading newline-delimited messages
// from r and writing them to w. Blank and undecodable lines are skipped.
func NewLineStream(r io.Reader, w io.Writer, logger zerolog.Logger) jsonrpc2.Stream {
	s := &lineStream{
		in:     bufio.NewReader(r),
		out:    w,
		logger: logger,
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *lineStream) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, total, err
		}

		line, err := s.in.ReadBytes('\n')
		total += int64(len(line))

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			msg, decodeErr := jsonrpc2.DecodeMessage(trimmed)
			if decodeErr == nil {
				return msg, total, nil
			}
			s.logger.Warn().Err(decodeErr).Int("bytes", len(trimmed)).Msg("skipping undecodable message")
		}
		if err != nil {
			return nil, total, err
		}
	}
}

func (s *lineStream) Write(_ context.Context, msg jsonrpc2.Message) (int64, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.out.Write(data)
	return int64(n), err
}

func (s *lineStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
