package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confhub/pkg/wire"
)

// routes builds the dispatch table once at construction: each operation
// path binds to its handler, resolved per request by the router. Anything
// that matches no operation answers null, not an error status.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { writeNull(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { writeNull(w) })

	for _, rt := range []struct {
		method  string
		op      wire.Op
		handler http.HandlerFunc
	}{
		{http.MethodGet, wire.OpContains, s.handleContains},
		{http.MethodGet, wire.OpGet, s.handleGet},
		{http.MethodGet, wire.OpGetAll, s.handleGetAll},
		{http.MethodPost, wire.OpPut, s.handlePut},
		{http.MethodPost, wire.OpPutAll, s.handlePutAll},
		{http.MethodDelete, wire.OpRemove, s.handleRemove},
		{http.MethodDelete, wire.OpClear, s.handleClear},
		{http.MethodPut, wire.OpSave, s.handleSave},
		{http.MethodGet, wire.OpStatus, s.handleStatus},
	} {
		r.Method(rt.method, "/"+rt.op.Path(), rt.handler)
	}
	return r
}

func (s *Server) handleContains(w http.ResponseWriter, r *http.Request) {
	key, ok := keyArg(r)
	if s.st == nil || !ok {
		writeNull(w)
		return
	}
	contains := 0
	if s.st.Contains(key) {
		contains = 1
	}
	logger.Debug("contains", "key", key, "contains", contains)
	writeJSON(w, wire.ContainsResult{Key: key, Contains: contains})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key, ok := keyArg(r)
	if s.st == nil || !ok {
		writeNull(w)
		return
	}
	// An absent key still answers a result row; its value is null.
	var result wire.GetResult
	if value, found := s.st.Get(key); found {
		result.Value = &value
	}
	logger.Debug("get", "key", key, "found", result.Value != nil)
	writeJSON(w, result)
}

func (s *Server) handleGetAll(w http.ResponseWriter, _ *http.Request) {
	if s.st == nil {
		writeNull(w)
		return
	}
	snapshot := s.st.Snapshot()
	rows := make([]wire.Row, 0, len(snapshot))
	for k, v := range snapshot {
		rows = append(rows, wire.Row{Key: k, Value: v})
	}
	logger.Debug("getAll", "rows", len(rows))
	writeJSON(w, rows)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var req wire.PutRequest
	if s.st == nil || decodeBody(r, &req) != nil {
		writeNull(w)
		return
	}
	s.st.Put(req.Key, req.Value)
	logger.Debug("put", "key", req.Key)
	writeJSON(w, wire.PutResult{Key: req.Key})
}

func (s *Server) handlePutAll(w http.ResponseWriter, r *http.Request) {
	var req wire.PutAllRequest
	if s.st == nil || decodeBody(r, &req) != nil {
		writeNull(w)
		return
	}
	// Pairs apply independently: an interruption partway leaves earlier
	// keys updated and later ones untouched.
	count := s.st.PutAll(req.Entries)
	logger.Debug("putAll", "count", count)
	writeJSON(w, wire.PutAllResult{Path: wire.PathPutAll, Count: count})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	key, ok := keyArg(r)
	if s.st == nil || !ok {
		writeJSON(w, wire.CountResult{Count: 0})
		return
	}
	count := 0
	if s.st.Remove(key) {
		count = 1
	}
	logger.Debug("remove", "key", key, "count", count)
	writeJSON(w, wire.CountResult{Count: count})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	if s.st == nil {
		writeJSON(w, wire.CountResult{Count: 0})
		return
	}
	count := s.st.Clear()
	logger.Debug("clear", "count", count)
	writeJSON(w, wire.CountResult{Count: count})
}

func (s *Server) handleSave(w http.ResponseWriter, _ *http.Request) {
	if s.st == nil {
		writeJSON(w, wire.CountResult{Count: 0})
		return
	}
	// Size is taken at the time of the call; a failed save answers 0,
	// meaning "nothing was durably saved", while memory is unchanged.
	size := s.st.Size()
	if err := s.st.Save(""); err != nil {
		logger.Error("saving configuration", "err", err)
		writeJSON(w, wire.CountResult{Count: 0})
		return
	}
	logger.Info("saved configuration", "count", size)
	writeJSON(w, wire.CountResult{Count: size})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	result := wire.StatusResult{Authority: s.authority, Degraded: s.st == nil}
	if s.st != nil {
		result.Size = s.st.Size()
		result.File = s.st.File()
	}
	writeJSON(w, result)
}

// keyArg extracts the key argument. A request without one is answered with
// the operation's empty result, never an error.
func keyArg(r *http.Request) (string, bool) {
	q := r.URL.Query()
	if !q.Has("key") {
		return "", false
	}
	return q.Get("key"), true
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response", "err", err)
	}
}

func writeNull(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("null\n"))
}
