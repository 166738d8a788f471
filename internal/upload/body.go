package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path"
	"strings"
	"sync"
)

// segment is either pre-rendered multipart framing or a file's content.
type segment struct {
	static []byte
	source *Source
	index  int // 1-based file index, 0 for framing
}

func (s segment) size() int64 {
	if s.source != nil {
		return s.source.Size
	}
	return int64(len(s.static))
}

// formField is a plain text part.
type formField struct {
	name, value string
}

// body is a multipart request body whose length is known before streaming.
// Framing is rendered up front with mime/multipart; file content is streamed
// from each Source in order.
type body struct {
	contentType string
	segments    []segment
	length      int64
}

var errBodyClosed = errors.New("upload body closed")

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(field string, src *Source) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(src.Name)))

	ct := mime.TypeByExtension(strings.ToLower(path.Ext(src.Name)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return h
}

// newBody lays out fields first, then one part per source under fileField.
func newBody(fields []formField, fileField string, sources []Source) (*body, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	b := &body{contentType: mw.FormDataContentType()}

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		static := make([]byte, buf.Len())
		copy(static, buf.Bytes())
		b.segments = append(b.segments, segment{static: static})
		buf.Reset()
	}

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	for i := range sources {
		src := &sources[i]
		// CreatePart writes the boundary and headers; the content is streamed later
		if _, err := mw.CreatePart(fileHeader(fileField, src)); err != nil {
			return nil, fmt.Errorf("failed to create part for %s: %w", src.Name, err)
		}
		flush()
		b.segments = append(b.segments, segment{source: src, index: i + 1})
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}
	flush()

	for _, s := range b.segments {
		b.length += s.size()
	}
	return b, nil
}

// readEvent describes bytes just read from the body.
type readEvent struct {
	n        int64
	source   *Source
	index    int
	fileSent int64
}

// bodyReader streams a body, opening each source lazily and checking its length.
// The transport may Close it from another goroutine, so all state is guarded.
type bodyReader struct {
	mu       sync.Mutex
	segments []segment
	cur      int
	rd       io.Reader
	closer   io.Closer
	fileSent int64
	onRead   func(readEvent)
	err      error // sticky, first source error
}

func (b *body) reader(onRead func(readEvent)) *bodyReader {
	return &bodyReader{segments: b.segments, onRead: onRead}
}

func (r *bodyReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return 0, r.err
	}

	for r.cur < len(r.segments) {
		seg := r.segments[r.cur]

		if r.rd == nil {
			if seg.source == nil {
				r.rd = bytes.NewReader(seg.static)
			} else {
				rc, err := seg.source.Open()
				if err != nil {
					r.err = fmt.Errorf("failed to open %s: %w", seg.source.Name, err)
					return 0, r.err
				}
				r.closer = rc
				r.rd = io.LimitReader(rc, seg.source.Size)
				r.fileSent = 0
			}
		}

		n, err := r.rd.Read(p)
		if n > 0 {
			ev := readEvent{n: int64(n)}
			if seg.source != nil {
				r.fileSent += int64(n)
				ev.source, ev.index, ev.fileSent = seg.source, seg.index, r.fileSent
			}
			if r.onRead != nil {
				r.onRead(ev)
			}
		}

		if err == io.EOF {
			if seg.source != nil && r.fileSent != seg.source.Size {
				r.closeCurrent()
				r.err = fmt.Errorf("%s changed during upload: read %d of %d bytes", seg.source.Name, r.fileSent, seg.source.Size)
				if n > 0 {
					return n, nil
				}
				return 0, r.err
			}
			r.closeCurrent()
			r.cur++
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			r.closeCurrent()
			if seg.source != nil {
				err = fmt.Errorf("failed to read %s: %w", seg.source.Name, err)
			}
			r.err = err
		}
		return n, err
	}

	return 0, io.EOF
}

func (r *bodyReader) closeCurrent() {
	if r.closer != nil {
		r.closer.Close()
		r.closer = nil
	}
	r.rd = nil
}

// Close releases any open source. Reads after Close fail.
func (r *bodyReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeCurrent()
	if r.cur < len(r.segments) && r.err == nil {
		r.err = errBodyClosed
	}
	return nil
}

// sourceErr returns the first error raised by a source, if any.
func (r *bodyReader) sourceErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err == errBodyClosed {
		return nil
	}
	return r.err
}
