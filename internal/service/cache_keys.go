package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/pixa/internal/domain"
)

// Memo keys identify one remote result page:
//
//	q=<escaped term>&page=<n>&per_page=<n>&safe=<bool>&order=<order>
//
// The term comes first so all pages of one term share a prefix.

// memoPrefix returns the key prefix shared by every page of term
func memoPrefix(term string) string {
	return "q=" + url.QueryEscape(term) + "&"
}

// memoKey returns the key for one remote page
func memoKey(p domain.SearchParams) string {
	var b strings.Builder
	b.WriteString(memoPrefix(p.Query))
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(p.Page))
	b.WriteString("&per_page=")
	b.WriteString(strconv.Itoa(p.PerPage))
	b.WriteString("&safe=")
	b.WriteString(strconv.FormatBool(p.SafeSearch))
	b.WriteString("&order=")
	b.WriteString(p.Order)
	return b.String()
}
