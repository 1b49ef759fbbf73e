package rest

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// FrontendHandler serves a single-page app from fsys, falling back to index for unknown paths.
type FrontendHandler struct {
	fsys       fs.FS
	index      string
	fileServer http.Handler
}

func NewFrontendHandler(fsys fs.FS, index string) *FrontendHandler {
	return &FrontendHandler{
		fsys:       fsys,
		index:      index,
		fileServer: http.FileServer(http.FS(fsys)),
	}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = h.index
	}

	info, err := fs.Stat(h.fsys, name)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		http.ServeFileFS(w, r, h.fsys, h.index)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.fileServer.ServeHTTP(w, r)
}
