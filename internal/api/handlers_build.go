package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/splice/internal/bundle"
	"github.com/dgallion1/splice/internal/pipeline"
	"github.com/dgallion1/splice/internal/resolve"
	"github.com/dgallion1/splice/internal/source"
	"github.com/dgallion1/splice/internal/srctree"
	"github.com/go-chi/chi/v5"
)

// buildRequest is the JSON body of POST /api/build and /api/builds.
type buildRequest struct {
	Root       string            `json:"root"`
	Files      map[string]string `json:"files"`
	Bundles    []bundleUpload    `json:"bundles"`
	PragmaOnce *bool             `json:"pragma_once"`
	MaxDepth   int               `json:"max_depth"`
}

// bundleUpload carries a bundle document inline; the filename extension
// selects the decoder.
type bundleUpload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// buildResponse is the body returned for a completed build.
type buildResponse struct {
	Text        string           `json:"text"`
	LineCount   int              `json:"line_count"`
	Files       []string         `json:"files"`
	Index       []srctree.Origin `json:"index"`
	ContentHash string           `json:"content_hash"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeBuildRequest(w, r)
	if !ok {
		return
	}

	res, err := s.orchestrator.Build(r.Context(), req)
	if err != nil {
		s.buildError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newBuildResponse(res))
}

func (s *Server) handleSubmitBuild(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeBuildRequest(w, r)
	if !ok {
		return
	}

	job := pipeline.NewJob(req)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/builds/%s", job.ID),
	})
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	body := map[string]any{"job": job.Snapshot()}
	if res := job.Result(); res != nil {
		body["result"] = newBuildResponse(res)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func (s *Server) handleBuildLookup(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	line, err := strconv.Atoi(r.URL.Query().Get("line"))
	if err != nil {
		jsonError(w, "line must be an integer", http.StatusBadRequest)
		return
	}
	res := job.Result()
	if res == nil {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return
	}

	origin, found := res.Index.Search(line)
	if !found {
		jsonError(w, fmt.Sprintf("line %d out of range [1, %d]", line, res.Index.Len()), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"line":   line,
		"origin": origin,
	})
}

// decodeBuildRequest reads the JSON body and unpacks inline bundles. Files
// listed directly take precedence over bundle entries of the same name.
func (s *Server) decodeBuildRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)

	var body buildRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxRequestBytes), http.StatusRequestEntityTooLarge)
			return pipeline.Request{}, false
		}
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return pipeline.Request{}, false
	}
	if body.Root == "" {
		jsonError(w, "root is required", http.StatusBadRequest)
		return pipeline.Request{}, false
	}
	if body.MaxDepth < 0 {
		jsonError(w, "max_depth must not be negative", http.StatusBadRequest)
		return pipeline.Request{}, false
	}

	files, err := unpackBundles(r.Context(), body.Bundles)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return pipeline.Request{}, false
	}
	for name, content := range body.Files {
		files[name] = content
	}

	return pipeline.Request{
		Root:       body.Root,
		Files:      files,
		PragmaOnce: body.PragmaOnce,
		MaxDepth:   body.MaxDepth,
	}, true
}

func unpackBundles(ctx context.Context, uploads []bundleUpload) (map[string]string, error) {
	mem := source.NewMem()
	for _, u := range uploads {
		filename := sanitizeFilename(u.Filename)
		if !bundle.IsSupportedExtension(filename) {
			return nil, fmt.Errorf("unsupported bundle type: %s", filepath.Ext(filename))
		}
		if _, err := bundle.Decode(strings.NewReader(u.Content), filename, mem); err != nil {
			return nil, err
		}
	}

	files := make(map[string]string, mem.Len())
	for _, name := range mem.Names() {
		f, _, err := mem.Read(ctx, name, "")
		if err != nil {
			return nil, err
		}
		files[name] = f.Content
	}
	return files, nil
}

// buildError maps resolver failures to 422 (or 502 for loader faults) with
// the inclusion stack; anything else is a bad request.
func (s *Server) buildError(w http.ResponseWriter, err error) {
	var rerr *resolve.Error
	if !errors.As(err, &rerr) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	code := http.StatusUnprocessableEntity
	if rerr.Kind == resolve.KindIO {
		s.log.Error("build load failure", "name", rerr.Name, "error", rerr.Err)
		code = http.StatusBadGateway
	}
	stack := rerr.Stack
	if stack == nil {
		stack = []resolve.Frame{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": err.Error(),
		"kind":  rerr.Kind.String(),
		"name":  rerr.Name,
		"stack": stack,
		"cycle": rerr.Cycle,
	})
}

func newBuildResponse(res *pipeline.Result) buildResponse {
	return buildResponse{
		Text:        res.Text,
		LineCount:   res.LineCount,
		Files:       res.Files,
		Index:       res.Index.Origins(),
		ContentHash: res.ContentHash,
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		name = "unnamed"
	}
	return name
}
