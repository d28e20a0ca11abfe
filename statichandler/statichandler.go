// Package statichandler implements the reference request handler from
// section 4.6: path resolution under a document root, GET/HEAD/OPTIONS file
// serving with directory listings, and PUT/DELETE when writes are enabled.
//
// Grounded on the reference framework's router/inbuilt/static.go (the
// isSafe traversal check, generalized here into an explicit
// descendant-of-root comparison since this handler owns path resolution
// directly rather than delegating to a router).
package statichandler

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/utils/strcomp"
	"github.com/karlpauls/ksah/httpproto"
	"github.com/karlpauls/ksah/internal/bufpool"
	"github.com/karlpauls/ksah/internal/clock"
	"github.com/karlpauls/ksah/internal/httputil"
	"github.com/karlpauls/ksah/internal/kv"
	"github.com/karlpauls/ksah/request"
	"github.com/karlpauls/ksah/response"
)

// Config selects the handler's document root and enabled feature set.
type Config struct {
	Root    string
	List    bool
	Write   bool
	Charset string
}

// Handler serves files rooted at Config.Root.
type Handler struct {
	cfg      Config
	root     string
	filePool *bufpool.Pool
}

// New builds a Handler. filePool backs both file-side copy loops, PUT
// body-to-file and GET file-to-response, kept separate from the
// connection-side read pool per section 4.6.
func New(cfg Config, filePool *bufpool.Pool) *Handler {
	if cfg.Charset == "" {
		cfg.Charset = "utf-8"
	}

	return &Handler{cfg: cfg, root: filepath.Clean(cfg.Root), filePool: filePool}
}

var errOutsideRoot = errors.New("statichandler: path escapes root")

// Handle dispatches req to the method-specific handler after resolving and
// validating req.Path against the document root.
func (h *Handler) Handle(req *request.Request, resp *response.Response) {
	fsPath, info, parentInfo, err := h.resolve(req.Path)
	if err != nil {
		h.writeError(req, resp, httpproto.StatusForbidden)
		return
	}

	if strings.HasSuffix(req.Path, "/") && (info == nil || !info.IsDir()) {
		h.writeError(req, resp, httpproto.StatusNotFound)
		return
	}

	switch req.Method {
	case httpproto.GET, httpproto.HEAD:
		h.handleGet(req, resp, fsPath, info)
	case httpproto.OPTIONS:
		h.handleOptions(resp, info, parentInfo)
	case httpproto.PUT:
		if !h.cfg.Write {
			h.methodNotAllowed(req, resp)
			return
		}
		h.handlePut(req, resp, fsPath, info, parentInfo)
	case httpproto.DELETE:
		if !h.cfg.Write {
			h.methodNotAllowed(req, resp)
			return
		}
		h.handleDelete(req, resp, fsPath, info)
	default:
		h.methodNotAllowed(req, resp)
	}
}

// resolve joins reqPath onto the document root, normalizes it, and confirms
// the result is a descendant of the root. It also stats both the target and
// its parent directory, tolerating either being absent.
func (h *Handler) resolve(reqPath string) (fsPath string, info, parentInfo os.FileInfo, err error) {
	clean := filepath.Clean(filepath.Join(h.root, filepath.FromSlash(reqPath)))

	if clean != h.root && !strings.HasPrefix(clean, h.root+string(filepath.Separator)) {
		return "", nil, nil, errOutsideRoot
	}

	if stat, statErr := os.Stat(clean); statErr == nil {
		info = stat
	}

	if stat, statErr := os.Stat(filepath.Dir(clean)); statErr == nil {
		parentInfo = stat
	}

	return clean, info, parentInfo, nil
}

func (h *Handler) handleGet(req *request.Request, resp *response.Response, fsPath string, info os.FileInfo) {
	if info == nil {
		h.writeError(req, resp, httpproto.StatusNotFound)
		return
	}

	if !info.IsDir() {
		h.serveFile(req, resp, fsPath, info)
		return
	}

	indexPath := filepath.Join(fsPath, "index.html")
	if indexInfo, err := os.Stat(indexPath); err == nil && !indexInfo.IsDir() {
		h.serveFile(req, resp, indexPath, indexInfo)
		return
	}

	if !h.cfg.List {
		h.writeError(req, resp, httpproto.StatusForbidden)
		return
	}

	if !strings.HasSuffix(req.Path, "/") {
		h.redirectToSlash(resp, req.Path)
		return
	}

	h.serveListing(req, resp, fsPath, req.Path)
}

func (h *Handler) serveFile(req *request.Request, resp *response.Response, fsPath string, info os.FileInfo) {
	mime := httputil.ByExtension(strings.ToLower(filepath.Ext(fsPath)))
	resp.SetHeader("Content-Type", httputil.ContentType(mime, h.cfg.Charset))
	resp.SetHeader("Content-Length", strconv.FormatInt(info.Size(), 10))
	resp.SetHeader("Last-Modified", clock.HTTPDate(info.ModTime()))

	if req.Method == httpproto.HEAD {
		_ = resp.End()
		return
	}

	f, err := os.Open(fsPath)
	if err != nil {
		h.writeError(req, resp, httpproto.StatusInternalServerError)
		return
	}
	defer f.Close()

	buf := h.filePool.Checkout()
	defer h.filePool.Checkin(buf)

	for {
		n, rerr := f.Read(buf.B)
		if n > 0 {
			if werr := resp.Write(buf.B[:n]); werr != nil {
				return
			}
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return
		}
	}

	_ = resp.End()
}

func (h *Handler) redirectToSlash(resp *response.Response, reqPath string) {
	resp.SetCode(httpproto.StatusMovedPermanently)
	resp.SetHeader("Location", reqPath+"/")
	resp.SetHeader("Content-Length", "0")
	_ = resp.End()
}

func (h *Handler) serveListing(req *request.Request, resp *response.Response, fsPath, reqPath string) {
	dirents, err := os.ReadDir(fsPath)
	if err != nil {
		h.writeError(req, resp, httpproto.StatusForbidden)
		return
	}

	entries := make([]httputil.Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, httputil.Entry{Name: d.Name(), IsDir: d.IsDir()})
	}

	dirName := "/"
	parentHref := "/"
	if reqPath != "/" {
		dirName = path.Base(strings.TrimSuffix(reqPath, "/"))
		parentHref = ".."
	}

	body := httputil.RenderListing(dirName, parentHref, entries)

	resp.SetHeader("Content-Type", httputil.ContentType(httputil.HTML, h.cfg.Charset))
	resp.SetHeader("Content-Length", strconv.Itoa(len(body)))

	if req.Method == httpproto.HEAD {
		_ = resp.End()
		return
	}

	if err := resp.Write(body); err != nil {
		return
	}

	_ = resp.End()
}

func (h *Handler) handleOptions(resp *response.Response, info, parentInfo os.FileInfo) {
	var allow string

	switch {
	case info == nil && parentInfo != nil && parentInfo.IsDir():
		allow = "PUT, OPTIONS"
	case info != nil && info.IsDir():
		allow = "GET, HEAD, OPTIONS"
	case info != nil:
		allow = "GET, HEAD, PUT, DELETE, OPTIONS"
	default:
		resp.SetCode(httpproto.StatusNotFound)
		resp.SetHeader("Content-Length", "0")
		_ = resp.End()
		return
	}

	resp.SetCode(httpproto.StatusNoContent)
	resp.SetHeader("Allow", allow)
	resp.SetHeader("Content-Length", "0")
	_ = resp.End()
}

// putHeadersAllowed implements section 4.6's PUT header restriction: no
// Content-* header besides Content-Length, Content-Type and an identity
// Content-Encoding, and no non-identity Transfer-Encoding.
func putHeadersAllowed(headers *kv.Storage) bool {
	for _, key := range headers.Keys() {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, "content-") {
			continue
		}

		switch lower {
		case "content-length", "content-type":
		case "content-encoding":
			if !strcomp.EqualFold(strings.TrimSpace(headers.Value(key)), "identity") {
				return false
			}
		default:
			return false
		}
	}

	if te, ok := headers.Get("transfer-encoding"); ok && !strcomp.EqualFold(strings.TrimSpace(te), "identity") {
		return false
	}

	return true
}

func (h *Handler) handlePut(req *request.Request, resp *response.Response, fsPath string, info, parentInfo os.FileInfo) {
	if !putHeadersAllowed(req.Headers) {
		h.methodNotAllowed(req, resp)
		return
	}

	if info != nil && info.IsDir() {
		h.writeError(req, resp, httpproto.StatusForbidden)
		return
	}

	if parentInfo == nil || !parentInfo.IsDir() {
		h.writeError(req, resp, httpproto.StatusForbidden)
		return
	}

	tmpPath := filepath.Join(filepath.Dir(fsPath), ".ksah-tmp-"+uniuri.New())

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		h.writeError(req, resp, httpproto.StatusInternalServerError)
		return
	}

	buf := h.filePool.Checkout()
	_, copyErr := io.CopyBuffer(f, req.Body, buf.B)
	h.filePool.Checkin(buf)

	syncErr := f.Sync()
	closeErr := f.Close()

	if copyErr != nil || syncErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		h.writeError(req, resp, httpproto.StatusInternalServerError)
		return
	}

	if err := os.Rename(tmpPath, fsPath); err != nil {
		_ = os.Remove(tmpPath)
		h.writeError(req, resp, httpproto.StatusInternalServerError)
		return
	}

	code := httpproto.StatusNoContent
	if info == nil {
		code = httpproto.StatusCreated
	}

	resp.SetCode(code)
	resp.SetHeader("Content-Length", "0")
	_ = resp.End()
}

func (h *Handler) handleDelete(req *request.Request, resp *response.Response, fsPath string, info os.FileInfo) {
	if info == nil {
		h.writeError(req, resp, httpproto.StatusNotFound)
		return
	}

	if info.IsDir() {
		h.writeError(req, resp, httpproto.StatusForbidden)
		return
	}

	if err := os.Remove(fsPath); err != nil {
		h.writeError(req, resp, httpproto.StatusInternalServerError)
		return
	}

	resp.SetCode(httpproto.StatusNoContent)
	resp.SetHeader("Content-Length", "0")
	_ = resp.End()
}

func (h *Handler) methodNotAllowed(req *request.Request, resp *response.Response) {
	h.writeError(req, resp, httpproto.StatusMethodNotAllowed)
}

func (h *Handler) writeError(req *request.Request, resp *response.Response, code httpproto.Code) {
	canned := httputil.CannedError(code)
	resp.SetCode(code)
	resp.SetHeader("Content-Type", httputil.ContentType(httputil.HTML, h.cfg.Charset))
	resp.SetHeader("Content-Length", canned.ContentLength)

	if req.Method != httpproto.HEAD {
		if err := resp.Write(canned.HTML); err != nil {
			return
		}
	}

	_ = resp.End()
}

