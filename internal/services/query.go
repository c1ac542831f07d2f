package services

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/marwari-basket/api/internal/domain"
)

const calendarDayLayout = "2006-01-02"

// ApplyOrderQuery filters and pages orders in memory. Filters combine with
// AND and the input order is preserved. Pagination is 1-indexed; a page past
// the last yields an empty slice, and PageSize values below 1 clamp to 1.
func ApplyOrderQuery(orders []domain.Order, query OrderQuery) (domain.Page[domain.Order], error) {
	matcher, err := newOrderMatcher(query)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if matcher.matches(order) {
			filtered = append(filtered, order)
		}
	}

	return paginate(filtered, query.Page, query.PageSize), nil
}

type orderMatcher struct {
	pattern   *search.Pattern
	status    domain.OrderStatus
	dayStart  time.Time
	dayEnd    time.Time
	filterDay bool
}

func newOrderMatcher(query OrderQuery) (orderMatcher, error) {
	m := orderMatcher{status: query.Status}

	if needle := strings.TrimSpace(query.Search); needle != "" {
		folder := search.New(language.Und, search.IgnoreCase, search.IgnoreDiacritics)
		m.pattern = folder.CompileString(needle)
	}

	if query.PlacedOn != "" {
		from, to, err := calendarDayBounds(query.PlacedOn, query.Location)
		if err != nil {
			return orderMatcher{}, err
		}
		m.dayStart = from
		m.dayEnd = to
		m.filterDay = true
	}

	return m, nil
}

func (m orderMatcher) matches(order domain.Order) bool {
	if m.status != "" && order.Status != m.status {
		return false
	}
	if m.filterDay {
		placed := order.CreatedAt
		if placed.Before(m.dayStart) || !placed.Before(m.dayEnd) {
			return false
		}
	}
	if m.pattern != nil {
		if !m.matchesText(order.OrderNumber) &&
			!m.matchesText(order.Customer.Name) &&
			!m.matchesText(order.Customer.Email) {
			return false
		}
	}
	return true
}

func (m orderMatcher) matchesText(haystack string) bool {
	if haystack == "" {
		return false
	}
	start, _ := m.pattern.IndexString(haystack)
	return start >= 0
}

// calendarDayBounds converts a civil date in the viewer's timezone to the
// half-open instant range [start, end) it covers. A nil location means
// server-local time.
func calendarDayBounds(day string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(calendarDayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid calendar day %q", day)
	}
	return start, start.AddDate(0, 0, 1), nil
}

func paginate(orders []domain.Order, page, pageSize int) domain.Page[domain.Order] {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(orders)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return domain.Page[domain.Order]{
			Items:      []domain.Order{},
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			PageSize:   pageSize,
		}
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.Order, end-start)
	copy(items, orders[start:end])

	return domain.Page[domain.Order]{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}
}
