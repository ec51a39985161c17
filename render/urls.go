package render

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// URLs builds links to host pages.
type URLs struct {
	root   *url.URL
	siteID int64
}

func NewURLs(wwwroot string, siteID int64) (*URLs, error) {
	u, err := url.Parse(strings.TrimSuffix(wwwroot, "/"))
	if err != nil {
		return nil, fmt.Errorf("bad wwwroot %q: %w", wwwroot, err)
	}
	return &URLs{root: u, siteID: siteID}, nil
}

func (u *URLs) make(p string, q url.Values) string {
	res := *u.root
	res.Path = path.Join(res.Path, p)
	res.RawQuery = q.Encode()
	return res.String()
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (u *URLs) Course(courseID int64) string {
	return u.make("/course/view.php", url.Values{"id": {id(courseID)}})
}

func (u *URLs) CourseInfo(courseID int64) string {
	return u.make("/course/info.php", url.Values{"id": {id(courseID)}})
}

func (u *URLs) User(userID int64) string {
	return u.make("/user/view.php", url.Values{"id": {id(userID)}, "course": {id(u.siteID)}})
}

func (u *URLs) Category(categoryID int64) string {
	return u.make("/course/index.php", url.Values{"categoryid": {id(categoryID)}})
}

// OverviewFile links file from course overview file area.
func (u *URLs) OverviewFile(contextID int64, name string) string {
	res := *u.root
	p := path.Join(res.Path, "/pluginfile.php", id(contextID), "course", "overviewfiles")
	res.Path = p + "/" + name
	res.RawPath = p + "/" + url.PathEscape(name)
	return res.String()
}

// withParams returns base with query parameters added or replaced.
func withParams(base string, params map[string]string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
