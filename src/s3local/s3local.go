/*
Package s3local is a tiny S3 stand-in for development. It supports just
enough of the API for the docstore: creating buckets, and putting, getting
and heading objects. Objects are plain files under a storage folder.
*/
package s3local

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.nurpath.academy/nurpath/portal/src/jobs"
	"git.nurpath.academy/nurpath/portal/src/logging"
	"github.com/rs/zerolog"
)

type Server struct {
	dir    string
	logger *zerolog.Logger
}

func NewHandler(dir string) http.Handler {
	return &Server{dir: dir, logger: logging.GlobalLogger()}
}

type s3Error struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
}

func writeError(w http.ResponseWriter, status int, code, msg, resource string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	body, _ := xml.Marshal(s3Error{Code: code, Message: msg, Resource: resource})
	w.Write([]byte(xml.Header))
	w.Write(body)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := bucketKey(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "InvalidURI", "bad bucket or key", r.URL.Path)
		return
	}
	s.logger.Debug().Str("method", r.Method).Str("bucket", bucket).Str("key", key).Msg("s3local request")

	bucketDir := filepath.Join(s.dir, bucket)

	switch {
	case r.Method == http.MethodPut && key == "":
		if err := os.MkdirAll(bucketDir, fs.ModePerm); err != nil {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error(), r.URL.Path)
			return
		}
		w.Header().Set("Location", "/"+bucket)
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPut:
		if !dirExists(bucketDir) {
			writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist", "/"+bucket)
			return
		}
		dest := filepath.Join(bucketDir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(dest), fs.ModePerm); err != nil {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error(), r.URL.Path)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "IncompleteBody", err.Error(), r.URL.Path)
			return
		}
		// Write then rename so readers never see half a document.
		tmp := dest + ".tmp"
		if err := os.WriteFile(tmp, body, 0o644); err != nil {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error(), r.URL.Path)
			return
		}
		if err := os.Rename(tmp, dest); err != nil {
			writeError(w, http.StatusInternalServerError, "InternalError", err.Error(), r.URL.Path)
			return
		}
		w.WriteHeader(http.StatusOK)

	case (r.Method == http.MethodGet || r.Method == http.MethodHead) && key != "":
		if !dirExists(bucketDir) {
			writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist", "/"+bucket)
			return
		}
		f, err := os.Open(filepath.Join(bucketDir, filepath.FromSlash(key)))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.", r.URL.Path)
			} else {
				writeError(w, http.StatusInternalServerError, "InternalError", err.Error(), r.URL.Path)
			}
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.", r.URL.Path)
			return
		}
		http.ServeContent(w, r, key, info.ModTime(), f)

	default:
		writeError(w, http.StatusNotImplemented, "NotImplemented", "s3local does not support "+r.Method+" here", r.URL.Path)
	}
}

// Splits a path-style URL into bucket and key. Rejects keys that would
// escape the bucket folder.
func bucketKey(urlPath string) (bucket, key string, ok bool) {
	trimmed := strings.TrimPrefix(urlPath, "/")
	bucket, key, _ = strings.Cut(trimmed, "/")
	if bucket == "" || bucket == "." || bucket == ".." || strings.ContainsAny(bucket, `\`) {
		return "", "", false
	}
	if key != "" {
		cleaned := path.Clean("/" + key)[1:]
		if cleaned != key || strings.HasSuffix(key, ".tmp") {
			return "", "", false
		}
	}
	return bucket, key, true
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Serves dir on addr until the job is canceled.
func StartServer(addr, dir string) *jobs.Job {
	job := jobs.New("s3local")
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		job.Logger.Error().Err(err).Msg("failed to create s3local storage folder")
		return job.Finish()
	}

	handler := &Server{dir: dir, logger: &job.Logger}
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-job.Canceled()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	go func() {
		defer job.Finish()
		job.Logger.Info().Str("addr", addr).Str("dir", dir).Msg("Serving local S3")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			job.Logger.Error().Err(err).Msg("s3local server failed")
		}
	}()

	return job
}
