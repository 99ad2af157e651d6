// Package deliver serves members of tar archives over HTTP by streaming
// decode, without extracting anything to disk.
package deliver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veldtec/tarstream/src/tarstream"
)

const tarSuffix = ".tar"

// errServed aborts the entry iteration once the requested member is written.
var errServed = errors.New("deliver: member served")

// TarHandler serves archives from ArchiveDirectory. A request for
// "/<name>.tar" returns a plain-text listing of the archive; adding
// "?file=<path>" streams that member's payload instead. The archive is
// decoded on the fly, so partially consumed entries are skipped over, never
// buffered.
type TarHandler struct {
	ArchiveDirectory string
	Log              *zap.Logger
}

func (handler *TarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler.Handler(w, r)
}

func requestArchive(requestPath string) string {
	name := path.Base(requestPath)
	return strings.TrimSuffix(name, tarSuffix)
}

func (handler *TarHandler) log() *zap.Logger {
	if handler.Log == nil {
		return zap.NewNop()
	}
	return handler.Log
}

func (handler *TarHandler) Handler(w http.ResponseWriter, r *http.Request) {
	name := requestArchive(r.URL.Path)
	member := r.URL.Query().Get("file")
	filename := path.Join(handler.ArchiveDirectory, name+tarSuffix)
	f, err := os.Open(filename)
	if err != nil {
		handler.log().Warn("archive not found",
			zap.String("archive", name), zap.Error(err))
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer func() { _ = f.Close() }()

	d := tarstream.NewDecoder(f)
	if member == "" {
		handler.list(w, name, d)
		return
	}
	handler.serveMember(w, name, member, d)
}

func (handler *TarHandler) list(w http.ResponseWriter, name string, d *tarstream.Decoder) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	err := d.Entries(func(h *tarstream.Header, payload io.Reader) error {
		_, err := fmt.Fprintf(w, "%s\t%d\t%s\n", h.FileType(), h.Size, h.Path())
		return err
	})
	if err != nil {
		handler.log().Error("listing aborted",
			zap.String("archive", name), zap.Error(err))
	}
}

func (handler *TarHandler) serveMember(w http.ResponseWriter, name, member string, d *tarstream.Decoder) {
	err := d.Entries(func(h *tarstream.Header, payload io.Reader) error {
		if h.Path() != member || h.FileType() != tarstream.TypeNormal {
			return nil
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.FormatInt(h.Size, 10))
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", path.Base(member)))
		if _, err := io.Copy(w, payload); err != nil {
			return errors.Wrap(err, "write payload")
		}
		return errServed
	})
	switch {
	case err == errServed:
		handler.log().Info("member served",
			zap.String("archive", name), zap.String("member", member))
	case err == nil:
		handler.log().Warn("member not found",
			zap.String("archive", name), zap.String("member", member))
		w.WriteHeader(http.StatusNotFound)
	default:
		handler.log().Error("decode failed",
			zap.String("archive", name), zap.String("member", member), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}
