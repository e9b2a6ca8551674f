package api

import (
	"net/http"
	"strings"

	"github.com/coursehq/courseapi/pkg/courses"
	"github.com/coursehq/courseapi/pkg/httputil"
	"github.com/coursehq/courseapi/pkg/middleware"
	"github.com/coursehq/courseapi/pkg/store"
)

func listOptionsFrom(r *http.Request) store.ListOptions {
	opts := store.ListOptions{
		Limit: httputil.ParseQueryInt(r, "limit", 0),
	}
	if strings.EqualFold(httputil.ParseQueryString(r, "sort", ""), "desc") {
		opts.Sort = store.SortDesc
	}
	return opts.Normalize()
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	result, err := s.courses.List(r.Context(), middleware.PrincipalFrom(r), listOptionsFrom(r))
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

func (s *Server) getCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	course, err := s.courses.Get(r.Context(), middleware.PrincipalFrom(r), id)
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, course)
}

func (s *Server) createCourse(w http.ResponseWriter, r *http.Request) {
	var input courses.CreateInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	course, err := s.courses.Create(r.Context(), middleware.PrincipalFrom(r), input)
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteCreated(w, course)
}

func (s *Server) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var update store.CourseUpdate
	if !httputil.ParseJSONOrError(w, r, &update) {
		return
	}

	course, err := s.courses.Update(r.Context(), middleware.PrincipalFrom(r), id, update)
	if err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteSuccess(w, course)
}

func (s *Server) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.courses.Delete(r.Context(), middleware.PrincipalFrom(r), id); err != nil {
		httputil.WriteAPIError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
