package api

import (
	"net/http"

	"github.com/coursehq/courseapi/pkg/httputil"
	"github.com/coursehq/courseapi/pkg/middleware"
	"github.com/coursehq/courseapi/pkg/users"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input users.RegisterInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	if _, err := s.users.Register(r.Context(), input); err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteCreated(w, map[string]string{"message": users.RegisterSuccessMessage})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds users.Credentials
	if !httputil.ParseJSONOrError(w, r, &creds) {
		return
	}

	token, err := s.users.Login(r.Context(), creds)
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]string{"token": token})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	result, err := s.users.List(r.Context(), middleware.PrincipalFrom(r))
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}
