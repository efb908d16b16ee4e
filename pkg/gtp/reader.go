package gtp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Response is one framed engine reply.
type Response struct {
	OK bool
	// ID is the numeric command id echoed by the engine, or -1.
	ID   int
	Text string
}

// Reader splits engine output into responses.
type Reader struct {
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: s}
}

// Next blocks until a complete response is read. Blank lines between
// responses are skipped. io.ErrUnexpectedEOF is returned when the stream
// ends inside a response.
func (r *Reader) Next() (Response, error) {
	var (
		lines   []string
		started bool
		resp    Response
	)
	for r.scanner.Scan() {
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if !started {
			if strings.TrimSpace(line) == "" {
				continue
			}
			var err error
			resp, line, err = parseHeader(line)
			if err != nil {
				return Response{}, err
			}
			started = true
			lines = append(lines, line)
			continue
		}
		if line == "" {
			resp.Text = strings.TrimSpace(strings.Join(lines, "\n"))
			return resp, nil
		}
		lines = append(lines, line)
	}
	if err := r.scanner.Err(); err != nil {
		return Response{}, err
	}
	if started {
		return Response{}, io.ErrUnexpectedEOF
	}
	return Response{}, io.EOF
}

// parseHeader splits "=12 text" into its status, id and remainder.
func parseHeader(line string) (Response, string, error) {
	resp := Response{ID: -1}
	switch line[0] {
	case '=':
		resp.OK = true
	case '?':
	default:
		return Response{}, "", fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	rest := line[1:]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end > 0 {
		id, err := strconv.Atoi(rest[:end])
		if err != nil {
			return Response{}, "", fmt.Errorf("%w: id in %q: %v", ErrMalformed, line, err)
		}
		resp.ID = id
	}
	return resp, strings.TrimSpace(rest[end:]), nil
}
