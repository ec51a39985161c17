package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"coursetheme/common"
	"coursetheme/course"
	"coursetheme/locale"
	"coursetheme/render"
	"coursetheme/store"
	"coursetheme/theme"
)

type info struct {
	Component string `yaml:"component"`
	Version   int64  `yaml:"version"`
	Release   string `yaml:"release"`
	Revision  int64  `yaml:"revision"`
	Uptime    string `yaml:"uptime"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	plugin := theme.Plugin(s.env.Cfg.Theme.Component)
	rev, err := s.env.Theme.Revision(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	out := info{
		Component: plugin.Component,
		Version:   plugin.Version,
		Revision:  rev,
		Uptime:    s.env.Uptime().String(),
	}
	if release, err := plugin.Release(); err == nil {
		out.Release = release.Format("2006-01-02")
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(data)
}

// listingQuery is what listing requests could change in configured display
// options.
type listingQuery struct {
	categoryID int64
	mode       common.ShowMode
	page       int
	perPage    int // 0 - all courses
	lang       string
}

func (s *Server) parseListingQuery(r *http.Request) (*listingQuery, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 0 {
		return nil, fmt.Errorf("bad category id '%s'", chi.URLParam(r, "id"))
	}
	q := &listingQuery{
		categoryID: id,
		mode:       s.env.Cfg.Listing.ShowMode,
		perPage:    s.env.Cfg.Listing.CoursesPerPage,
		lang:       r.URL.Query().Get("lang"),
	}
	values := r.URL.Query()
	if v := values.Get("mode"); len(v) > 0 {
		if q.mode, err = common.ParseShowMode(v); err != nil {
			return nil, err
		}
	}
	if v := values.Get("page"); len(v) > 0 {
		if q.page, err = strconv.Atoi(v); err != nil || q.page < 0 {
			return nil, fmt.Errorf("bad page '%s'", v)
		}
	}
	switch v := values.Get("perpage"); {
	case v == "all":
		if !s.env.Cfg.Listing.AllowShowAll {
			return nil, errors.New("showing all courses is not allowed")
		}
		q.perPage = 0
	case len(v) > 0:
		if q.perPage, err = strconv.Atoi(v); err != nil || q.perPage <= 0 {
			return nil, fmt.Errorf("bad perpage '%s'", v)
		}
	}
	return q, nil
}

func (q *listingQuery) options(urls *render.URLs, allowShowAll bool, depth int) course.DisplayOptions {
	return course.DisplayOptions{
		ShowMode:         q.mode,
		Offset:           q.page * q.perPage,
		Limit:            q.perPage,
		PaginationURL:    urls.Category(q.categoryID),
		AllowShowAll:     allowShowAll,
		SubcategoryDepth: depth,
	}
}

type categoryPage struct {
	Lang      string
	Theme     string
	Title     string
	StylesURL string
	Content   template.HTML
	Empty     string
	Modules   []string
	Strings   []render.JSString
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := s.parseListingQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	cfg := s.env.Cfg

	cat, err := s.env.Store.Category(ctx, q.categoryID, cfg.Listing.SubcategoryDepth, q.perPage)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return
	}
	if q.page > 0 {
		if cat.Courses, cat.CourseCount, err = s.env.Store.Courses(ctx, q.categoryID, q.page*q.perPage, q.perPage); err != nil {
			s.fail(w, r, statusOf(err), err)
			return
		}
	}

	page := render.NewPage()
	rr, err := s.env.NewRenderer(page, q.lang)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	opts := q.options(s.urls, cfg.Listing.AllowShowAll, cfg.Listing.SubcategoryDepth)
	opts.Attributes = map[string]string{"data-category": strconv.FormatInt(cat.ID, 10)}
	tree, err := rr.CategoryTree(ctx, opts, cat)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	rev, err := s.env.Theme.Revision(ctx)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	strs := locale.New(q.lang)
	if len(q.lang) == 0 {
		strs = locale.New(cfg.Theme.Lang)
	}
	data := categoryPage{
		Lang:      strs.Lang().String(),
		Theme:     cfg.Theme.Name,
		Title:     cat.Name,
		StylesURL: "/theme/styles.scss?rev=" + strconv.FormatInt(rev, 10),
		Content:   template.HTML(tree),
		Modules:   page.Modules(),
		Strings:   page.Strings(),
	}
	if len(data.Title) == 0 {
		data.Title = strs.Get(locale.Categories)
	}
	if len(tree) == 0 {
		data.Empty = strs.Get(locale.NoCategories)
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "category.html.tmpl", data); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := s.parseListingQuery(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	courses, total, err := s.env.Store.Courses(ctx, q.categoryID, q.page*q.perPage, q.perPage)
	if err != nil {
		s.fail(w, r, statusOf(err), err)
		return
	}
	rr, err := s.env.NewRenderer(render.NewPage(), q.lang)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	out, err := rr.CourseListing(ctx, q.options(s.urls, s.env.Cfg.Listing.AllowShowAll, 0), courses, total)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	scss, err := s.env.Theme.SCSS(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-scss; charset=utf-8")
	_, _ = io.WriteString(w, scss)
}

func (s *Server) handleSettingImage(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.fail(w, r, http.StatusForbidden, errors.New("bad admin token"))
		return
	}
	name := r.URL.Query().Get("filename")
	if len(name) == 0 {
		s.fail(w, r, http.StatusBadRequest, errors.New("file name is required"))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageSize))
	if err != nil {
		s.fail(w, r, http.StatusRequestEntityTooLarge, err)
		return
	}
	element := chi.URLParam(r, "name")
	if err := s.env.Theme.UploadSettingsImage(r.Context(), element, name, data); err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	s.log.Info("Setting image updated", zap.String("setting", theme.SettingName(element)), zap.String("file", name))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authorized(r *http.Request) bool {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return false
	}
	return s.env.Cfg.Server.AdminToken.Matches(h[len(prefix):])
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
