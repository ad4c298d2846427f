package shopify

import (
	"net/url"
	"strconv"
)

// fetchPage is one request of a paginated order listing. The upstream API
// rejects requests that mix a page_info cursor with filter params, so a
// page is either the filtered first page or a cursor continuation, never
// both.
type fetchPage struct {
	cursor string
	window *DateWindow
}

func firstPage(window DateWindow) fetchPage {
	return fetchPage{window: &window}
}

func nextPage(cursor string) fetchPage {
	return fetchPage{cursor: cursor}
}

func (p fetchPage) query(pageSize int) url.Values {
	values := url.Values{}
	values.Set("limit", strconv.Itoa(pageSize))
	if p.cursor != "" {
		values.Set("page_info", p.cursor)
		return values
	}
	values.Set("status", "any")
	if p.window != nil {
		values.Set("created_at_min", p.window.Start.UTC().Format("2006-01-02T15:04:05Z07:00"))
		values.Set("created_at_max", p.window.End.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	return values
}
