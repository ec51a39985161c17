package render

import (
	"strconv"

	"github.com/beevik/etree"

	"coursetheme/common"
	"coursetheme/course"
	"coursetheme/locale"
)

// maximum number of page links in paging bar, not counting first/last
const maxPageLinks = 10

// Paging describes pagination control shown under a course listing.
type Paging struct {
	Mode    common.PagingMode
	Total   int
	PerPage int
	// zero based current page
	Page        int
	BaseURL     string
	ShowAll     bool
	ViewMoreURL string
}

// Paginate decides which pagination control listing needs when shown
// courses out of total are displayed. perPage is configured page size used
// when options do not limit listing.
func Paginate(total, shown int, opts course.DisplayOptions, perPage int) Paging {
	if opts.Limit > 0 {
		perPage = opts.Limit
	}
	if perPage <= 0 {
		perPage = 1
	}
	p := Paging{Total: total, PerPage: perPage, Page: opts.Offset / perPage}
	if last := p.Pages() - 1; p.Page > last {
		p.Page = max(last, 0)
	}

	switch {
	case total > shown && len(opts.PaginationURL) > 0:
		p.Mode = common.PagingModeBar
		p.BaseURL = opts.PaginationURL
		p.ShowAll = opts.AllowShowAll
	case total > shown && len(opts.ViewMoreURL) > 0:
		p.Mode = common.PagingModeViewMore
		p.ViewMoreURL = opts.ViewMoreURL
	case total <= shown && total > perPage && len(opts.PaginationURL) > 0 && opts.AllowShowAll:
		p.Mode = common.PagingModeShowPerPage
		p.BaseURL = opts.PaginationURL
	default:
		p.Mode = common.PagingModeNone
	}
	return p
}

// Pages returns number of pages in paging bar.
func (p Paging) Pages() int {
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p Paging) pageURL(page int) string {
	return withParams(p.BaseURL, map[string]string{
		"page":    strconv.Itoa(page),
		"perpage": strconv.Itoa(p.PerPage),
	})
}

// element builds control markup, nil when there is nothing to show.
func (p Paging) element(strs *locale.Strings, prefix string) *etree.Element {
	switch p.Mode {
	case common.PagingModeBar:
		return p.bar(strs, prefix)
	case common.PagingModeViewMore:
		div := newElement("div", "paging paging-morelink")
		createLink(div, p.ViewMoreURL, strs.Get(locale.ViewMore), "btn btn-secondary")
		return div
	case common.PagingModeShowPerPage:
		div := newElement("div", "paging paging-showperpage")
		createLink(div, withParams(p.BaseURL, map[string]string{"perpage": strconv.Itoa(p.PerPage)}),
			strs.Get(locale.ShowPerPage, p.PerPage))
		return div
	}
	return nil
}

func (p Paging) bar(strs *locale.Strings, prefix string) *etree.Element {
	wrap := newElement("div", prefix+"paging")

	nav := createElement(wrap, "nav", "pagination pagination-centered justify-content-center")
	nav.CreateAttr("aria-label", strs.Get(locale.Page, p.Page+1))
	ul := createElement(nav, "ul", "mt-1 pagination")

	item := func(page int, text string) {
		li := createElement(ul, "li", "page-item")
		if page == p.Page {
			li.CreateAttr("class", "page-item active")
			li.CreateAttr("aria-current", "page")
			createElement(li, "span", "page-link").SetText(text)
			return
		}
		createLink(li, p.pageURL(page), text, "page-link")
	}
	ellipsis := func() {
		createElement(createElement(ul, "li", "page-item disabled"), "span", "page-link").SetText("...")
	}

	last := p.Pages() - 1
	first, end := p.window(last)

	if p.Page > 0 {
		li := createElement(ul, "li", "page-item")
		createLink(li, p.pageURL(p.Page-1), strs.Get(locale.Previous), "page-link").CreateAttr("rel", "prev")
	}
	if first > 0 {
		item(0, "1")
		if first > 1 {
			ellipsis()
		}
	}
	for i := first; i <= end; i++ {
		item(i, strconv.Itoa(i+1))
	}
	if end < last {
		if end < last-1 {
			ellipsis()
		}
		item(last, strconv.Itoa(last+1))
	}
	if p.Page < last {
		li := createElement(ul, "li", "page-item")
		createLink(li, p.pageURL(p.Page+1), strs.Get(locale.Next), "page-link").CreateAttr("rel", "next")
	}

	if p.ShowAll {
		div := createElement(wrap, "div", "paging paging-showall")
		createLink(div, withParams(p.BaseURL, map[string]string{"perpage": "all"}), strs.Get(locale.ShowAll, p.Total))
	}
	return wrap
}

// window returns range of pages linked around current one.
func (p Paging) window(last int) (int, int) {
	first := max(0, p.Page-maxPageLinks/2)
	end := min(last, first+maxPageLinks-1)
	first = max(0, min(first, end-maxPageLinks+1))
	return first, end
}
