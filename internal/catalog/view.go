package catalog

import (
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

const (
	PageSize     = 8
	RelatedLimit = 4
)

type Page struct {
	Items        []domain.Product `json:"items"`
	Search       string           `json:"search"`
	Page         int              `json:"page"`
	PageSize     int              `json:"pageSize"`
	TotalPages   int              `json:"totalPages"`
	TotalMatches int              `json:"totalMatches"`
	HasPrev      bool             `json:"hasPrev"`
	HasNext      bool             `json:"hasNext"`
	// Prev and Next are the pages the pager buttons lead to.
	Prev         int              `json:"prevPage"`
	Next         int              `json:"nextPage"`
}

// Matches reports whether term is a case-insensitive substring of the title
// or of any tag. The empty term matches every product.
func Matches(p domain.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func Filter(products []domain.Product, term string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// Paginate filters products by term and returns the 1-based page of size
// pageSize. Pages before the first are treated as the first; pages past the
// end are empty.
func Paginate(products []domain.Product, term string, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = PageSize
	}

	matches := Filter(products, term)
	total := len(matches)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := page * pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:        matches[start:end],
		Search:       term,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		TotalMatches: total,
		HasPrev:      page > 1,
		HasNext:      page < totalPages,
		Prev:         min(PrevPage(page), max(totalPages, 1)),
		Next:         NextPage(page, totalPages),
	}
}

// NextPage never goes past the last page.
func NextPage(current, totalPages int) int {
	if current >= totalPages {
		return max(totalPages, 1)
	}
	return current + 1
}

// PrevPage never goes below 1.
func PrevPage(current int) int {
	if current <= 1 {
		return 1
	}
	return current - 1
}

// Related returns up to limit products sharing at least one tag with p,
// excluding p, in catalog order.
func Related(products []domain.Product, p domain.Product, limit int) []domain.Product {
	tags := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		tags[strings.ToLower(t)] = struct{}{}
	}

	out := make([]domain.Product, 0, limit)
	for _, candidate := range products {
		if len(out) == limit {
			break
		}
		if candidate.ID == p.ID {
			continue
		}
		for _, t := range candidate.Tags {
			if _, ok := tags[strings.ToLower(t)]; ok {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}
