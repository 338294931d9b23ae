// Package hostindex wraps the host machine's pre-existing file-name index
// behind a stable query contract. It is the only package that knows the
// index's calling convention; everything else sees FileRow slices.
package hostindex

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/sync/singleflight"

	"github.com/tomhartill/omnidex/internal/launcher"
	"github.com/tomhartill/omnidex/internal/logging"
)

var hostLog = logging.ForComponent(logging.CompHostIndex)

// FileRow is one classified result from the host index.
type FileRow struct {
	Path        string
	Filename    string
	Extension   string
	Size        uint64
	Modified    time.Time
	IsFolder    bool
	Kind        launcher.Kind
	DisplayPath string
}

// request is one search shipped to the worker goroutine.
type request struct {
	query string
	max   uint32
	reply chan response
}

type response struct {
	rows []FileRow
	err  error
}

// Service owns the Conn exclusively. The host index is single-threaded, so
// all queries run on one worker goroutine; Search stays non-blocking for
// async callers and identical concurrent queries collapse via singleflight.
type Service struct {
	conn     Conn
	requests chan request
	done     chan struct{}
	sf       singleflight.Group
}

// New starts the adapter over conn. A nil conn means the host index never
// came up; Search then reports ErrHostIndexUnavailable and callers treat
// external search as disabled.
func New(conn Conn) *Service {
	s := &Service{
		conn:     conn,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	if conn != nil {
		go s.worker()
	}
	return s
}

// Available reports whether the host index is usable.
func (s *Service) Available() bool { return s.conn != nil }

// Close shuts the worker down and releases the handle.
func (s *Service) Close() {
	if s.conn == nil {
		return
	}
	close(s.done)
}

// Search runs a query against the host index. The blocking protocol call
// happens on the worker goroutine; cancelling ctx abandons the wait without
// touching index state.
func (s *Service) Search(ctx context.Context, query string, max uint32) ([]FileRow, error) {
	if s.conn == nil {
		return nil, launcher.ErrHostIndexUnavailable
	}
	smart := BuildQuery(query)
	if smart == "" {
		return nil, nil
	}
	if max == 0 {
		max = 50
	}

	key := fmt.Sprintf("%s|%d", smart, max)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		req := request{query: smart, max: max, reply: make(chan response, 1)}
		select {
		case s.requests <- req:
		case <-s.done:
			return nil, launcher.ErrHostIndexUnavailable
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		select {
		case resp := <-req.reply:
			return resp.rows, resp.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	if err != nil {
		return nil, err
	}
	rows, _ := v.([]FileRow)
	return postFilter(rows), nil
}

func (s *Service) worker() {
	defer s.conn.Close()
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			rows, err := s.runQuery(req.query, req.max)
			req.reply <- response{rows: rows, err: err}
		}
	}
}

// runQuery executes one blocking round trip. Fixed configuration:
// case-insensitive, partial match, filename field only, newest first.
func (s *Service) runQuery(query string, max uint32) ([]FileRow, error) {
	start := time.Now()
	c := s.conn

	c.Reset()
	c.SetMatchCase(false)
	c.SetMatchWholeWord(false)
	c.SetMatchPath(false)
	c.SetSort(SortDateModifiedDescending)
	c.SetSearch(encodeUTF16(query))
	c.SetRequestFlags(RequestFullPath | RequestSize | RequestDateModified)
	c.SetMax(max)

	if !c.Query(true) {
		code := c.LastError()
		err := &launcher.QueryError{Code: code, Msg: codeMessage(code)}
		hostLog.Warn("host_query_failed", slog.Uint64("code", uint64(code)))
		return nil, err
	}

	n := c.NumResults()
	rows := make([]FileRow, 0, n)
	buf := make([]uint16, pathBufLen)
	for i := uint32(0); i < n; i++ {
		written := c.ResultFullPath(i, buf)
		if written == 0 {
			continue
		}
		path := string(utf16.Decode(buf[:written]))
		size := c.ResultSize(i)
		modified := c.ResultModifiedUnix(i)

		filename := filepath.Base(path)
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
		isFolder := ext == "" && size == 0

		row := FileRow{
			Path:      path,
			Filename:  filename,
			Extension: ext,
			IsFolder:  isFolder,
		}
		if size > 0 {
			row.Size = uint64(size)
		}
		if modified > 0 {
			row.Modified = time.Unix(modified, 0)
		}
		row.Kind = Classify(path, ext, isFolder)
		row.DisplayPath = DisplayPath(path, filename)
		rows = append(rows, row)
	}

	logging.Aggregate(logging.CompHostIndex, "host_query",
		slog.Int64("ms", time.Since(start).Milliseconds()))
	return rows, nil
}

// postFilter drops uninstaller shortcuts and system-marker paths. It
// allocates a fresh slice: singleflight may hand the same backing array to
// several concurrent callers.
func postFilter(rows []FileRow) []FileRow {
	out := make([]FileRow, 0, len(rows))
	for _, r := range rows {
		nameLower := strings.ToLower(r.Filename)
		if strings.Contains(nameLower, "uninstall") || strings.Contains(nameLower, "卸载") {
			continue
		}
		if strings.Contains(r.Path, "$Recycle.Bin") ||
			strings.Contains(r.Path, "System Volume Information") {
			continue
		}
		out = append(out, r)
	}
	return out
}

func encodeUTF16(s string) []uint16 {
	u := utf16.Encode([]rune(s))
	return append(u, 0)
}
