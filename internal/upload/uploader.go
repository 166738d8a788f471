package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filedeck/filedeck/internal/api"
	"github.com/filedeck/filedeck/internal/config"
	"github.com/filedeck/filedeck/internal/constants"
	"github.com/filedeck/filedeck/internal/http"
	"github.com/filedeck/filedeck/internal/logging"
	"github.com/filedeck/filedeck/internal/models"
	"github.com/filedeck/filedeck/internal/progress"
	"github.com/filedeck/filedeck/internal/version"
)

// Progress is reported on every read of the request body.
// Percent never decreases during an attempt.
type Progress struct {
	Sent    int64 // body bytes sent, framing included
	Total   int64 // body length
	Percent int   // floor(Sent*100/Total); 100 on success, 0 after failure

	// Current file; empty while framing is being sent
	File      string
	FileIndex int // 1-based
	FileSent  int64
	FileSize  int64
}

// Options control a single upload.
type Options struct {
	OnProgress func(Progress)
	// FolderName overrides Folder.Name for folder uploads.
	FolderName string
}

// Outcome is the backend's answer to an accepted upload.
type Outcome struct {
	Status    int
	Bytes     int64 // body length sent
	Elapsed   time.Duration
	FileURL   string     // single-file uploads
	FolderURL string     // folder uploads, when reported
	FolderID  *models.ID // folder uploads, when reported
	Message   string
}

// Uploader posts multipart bodies to the backend's upload endpoints.
// Uploads are never retried and carry no timeout of their own.
type Uploader struct {
	httpClient *nethttp.Client
	baseURL    string
	logger     *logging.Logger
}

// New creates an Uploader for baseURL using httpClient as is.
func New(baseURL string, httpClient *nethttp.Client, logger *logging.Logger) *Uploader {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return &Uploader{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// NewFromConfig creates an Uploader with the transfer-tuned, proxy-aware client.
func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Uploader, error) {
	client, err := http.CreateTransferClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure upload client: %w", err)
	}
	return New(cfg.BackendURL, client, logger), nil
}

// UploadFile sends one file to POST /api/upload. Only 201 Created is success.
func (u *Uploader) UploadFile(ctx context.Context, sess *models.Session, src Source, opts Options) (*Outcome, error) {
	if !src.valid() {
		return nil, api.ErrNoFileSelected
	}
	if sess.BearerToken() == "" {
		return nil, api.ErrAuthRequired
	}

	b, err := newBody(nil, constants.FieldFile, []Source{src})
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(b.length)
	out, resp, err := u.send(ctx, constants.PathUploadFile, sess, b, tracker, opts.OnProgress)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusCreated {
		reset(opts.OnProgress, tracker)
		return nil, fmt.Errorf("upload failed: %w", api.NewServerError(resp))
	}

	var parsed models.FileUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		u.logger.Warn().Err(err).Msg("upload succeeded but the response was not JSON")
	}
	out.FileURL = parsed.FileURL

	complete(opts.OnProgress, tracker)
	return out, nil
}

// UploadFolder sends every file of folder in one POST /api/folder/upload-folder
// request, with folderName and userId fields ahead of the files. Any 2xx is success.
func (u *Uploader) UploadFolder(ctx context.Context, sess *models.Session, folder *Folder, opts Options) (*Outcome, error) {
	if folder == nil || len(folder.Files) == 0 {
		return nil, api.ErrNoFileSelected
	}
	for _, f := range folder.Files {
		if !f.valid() {
			return nil, api.ErrNoFileSelected
		}
	}
	if sess.UserID() == "" {
		return nil, api.ErrAuthRequired
	}

	name := strings.TrimSpace(opts.FolderName)
	if name == "" {
		name = strings.TrimSpace(folder.Name)
	}
	if name == "" {
		return nil, api.ErrEmptyName
	}

	fields := []formField{
		{name: constants.FieldFolderName, value: name},
		{name: constants.FieldUserID, value: sess.UserID()},
	}
	b, err := newBody(fields, constants.FieldFiles, folder.Files)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(b.length)
	out, resp, err := u.send(ctx, constants.PathUploadFolder, sess, b, tracker, opts.OnProgress)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reset(opts.OnProgress, tracker)
		return nil, fmt.Errorf("folder upload failed: %w", api.NewServerError(resp))
	}

	// The response shape is loose; an empty or non-JSON body is still a success
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed models.FolderUploadResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			u.logger.Debug().Err(err).Msg("folder upload response was not JSON")
		}
	}
	out.FolderURL = parsed.FolderURL
	out.FolderID = parsed.FolderID
	out.Message = parsed.Message

	complete(opts.OnProgress, tracker)
	return out, nil
}

// send streams b to path, feeding tracker as the body is read. On transport
// failure it reports a reset tick and returns a NetworkError (or the source's
// own error, or the context's error).
func (u *Uploader) send(ctx context.Context, path string, sess *models.Session, b *body, tracker *progress.Tracker, onProgress func(Progress)) (*Outcome, *nethttp.Response, error) {
	rd := b.reader(func(ev readEvent) {
		pct := tracker.Add(ev.n)
		if onProgress == nil {
			return
		}
		p := Progress{Sent: tracker.Sent(), Total: tracker.Total(), Percent: pct}
		if ev.source != nil {
			p.File, p.FileIndex, p.FileSent, p.FileSize = ev.source.Name, ev.index, ev.fileSent, ev.source.Size
		}
		onProgress(p)
	})

	// The transport owns rd from here and closes it when the body is done
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, u.baseURL+path, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = b.length
	req.Header.Set("Content-Type", b.contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := sess.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	u.logger.Debug().Str("path", path).Int64("bytes", b.length).Msg("starting upload")

	start := time.Now()
	resp, err := u.httpClient.Do(req)
	if err != nil {
		reset(onProgress, tracker)

		if srcErr := rd.sourceErr(); srcErr != nil {
			return nil, nil, srcErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, &api.NetworkError{Op: "upload", Err: err}
	}

	elapsed := time.Since(start)
	u.logger.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("upload finished")

	return &Outcome{Status: resp.StatusCode, Bytes: b.length, Elapsed: elapsed}, resp, nil
}

// complete reports the single 100% tick of an accepted upload.
func complete(fn func(Progress), t *progress.Tracker) {
	pct := t.Complete()
	notify(fn, Progress{Sent: t.Sent(), Total: t.Total(), Percent: pct})
}

// reset reports the 0% tick of a failed upload.
func reset(fn func(Progress), t *progress.Tracker) {
	t.Reset()
	notify(fn, Progress{Sent: t.Sent(), Total: t.Total(), Percent: t.Percent()})
}

func notify(fn func(Progress), p Progress) {
	if fn != nil {
		fn(p)
	}
}
