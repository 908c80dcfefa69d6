// Package queryserver exposes the engine's read-only query surface (spec
// §6: head, finalized_head, block, blue_score, tips, is_ancestor) over
// HTTP. Grounded directly on the teacher's apiserver/server/routes.go
// makeHandler/addRoutes pattern, generalized from the teacher's
// controllers-package indirection to handlers that call the engine
// directly, since this surface has no separate business-logic layer to
// delegate to.
package queryserver

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meridian-dag/consensus/consensus"
	"github.com/meridian-dag/consensus/hash"
)

const (
	routeParamHash      = "hash"
	routeParamAncestor  = "ancestor"
	routeParamDescended = "descendant"
)

// Server wraps an *consensus.Engine behind a read-only gorilla/mux router.
type Server struct {
	engine *consensus.Engine
	router *mux.Router
}

// New builds a Server over engine, wiring every route of spec §6's read
// surface.
func New(engine *consensus.Engine) *Server {
	s := &Server{engine: engine, router: mux.NewRouter()}
	s.addRoutes()
	return s
}

// ServeHTTP lets Server satisfy http.Handler directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) addRoutes() {
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/head", s.handleHead).Methods("GET")
	s.router.HandleFunc("/finalized-head", s.handleFinalizedHead).Methods("GET")
	s.router.HandleFunc("/tips", s.handleTips).Methods("GET")
	s.router.HandleFunc(fmt.Sprintf("/block/{%s}", routeParamHash), s.handleBlock).Methods("GET")
	s.router.HandleFunc(fmt.Sprintf("/blue-score/{%s}", routeParamHash), s.handleBlueScore).Methods("GET")
	s.router.HandleFunc(
		fmt.Sprintf("/is-ancestor/{%s}/{%s}", routeParamAncestor, routeParamDescended),
		s.handleIsAncestor).Methods("GET")
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "consensus query server running"})
}

func (s *Server) handleHead(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"head": s.engine.Head().String()})
}

func (s *Server) handleFinalizedHead(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"finalized_head": s.engine.FinalizedHead().String()})
}

func (s *Server) handleTips(w http.ResponseWriter, _ *http.Request) {
	tips := s.engine.Tips()
	out := make([]string, len(tips))
	for i, t := range tips {
		out[i] = t.String()
	}
	sendJSON(w, http.StatusOK, map[string][]string{"tips": out})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	h, err := parseHash(mux.Vars(r)[routeParamHash])
	if err != nil {
		sendErr(w, http.StatusUnprocessableEntity, err)
		return
	}
	block, ok := s.engine.Block(h)
	if !ok {
		sendErr(w, http.StatusNotFound, fmt.Errorf("unknown block %s", h))
		return
	}
	sendJSON(w, http.StatusOK, block)
}

func (s *Server) handleBlueScore(w http.ResponseWriter, r *http.Request) {
	h, err := parseHash(mux.Vars(r)[routeParamHash])
	if err != nil {
		sendErr(w, http.StatusUnprocessableEntity, err)
		return
	}
	score, ok := s.engine.BlueScore(h)
	if !ok {
		sendErr(w, http.StatusNotFound, fmt.Errorf("%s not classified", h))
		return
	}
	sendJSON(w, http.StatusOK, map[string]uint64{"blue_score": score})
}

func (s *Server) handleIsAncestor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, err := parseHash(vars[routeParamAncestor])
	if err != nil {
		sendErr(w, http.StatusUnprocessableEntity, err)
		return
	}
	b, err := parseHash(vars[routeParamDescended])
	if err != nil {
		sendErr(w, http.StatusUnprocessableEntity, err)
		return
	}
	result, err := s.engine.IsAncestor(a, b)
	if err != nil {
		sendErr(w, http.StatusUnprocessableEntity, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]bool{"is_ancestor": result})
}

func parseHash(s string) (hash.Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("malformed hash %q: %w", s, err)
	}
	return hash.FromSlice(b)
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func sendErr(w http.ResponseWriter, status int, err error) {
	sendJSON(w, status, map[string]string{"error": err.Error()})
}
