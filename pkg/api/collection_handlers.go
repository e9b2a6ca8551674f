package api

import (
	"net/http"

	"github.com/coursehq/courseapi/pkg/httputil"
	"github.com/coursehq/courseapi/pkg/middleware"
)

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	result, err := s.collections.List(r.Context(), middleware.PrincipalFrom(r))
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	collection, err := s.collections.Get(r.Context(), middleware.PrincipalFrom(r), id)
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, collection)
}
