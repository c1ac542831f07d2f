package services

import (
	"testing"
	"time"

	"github.com/marwari-basket/api/internal/domain"
)

func queryFixtures() []domain.Order {
	base := time.Date(2026, 8, 14, 22, 30, 0, 0, time.UTC)
	orders := []domain.Order{
		testOrder("ord_1", domain.OrderStatusPending),
		testOrder("ord_2", domain.OrderStatusShipped),
		testOrder("ord_3", domain.OrderStatusShipped),
		testOrder("ord_4", domain.OrderStatusCancelled),
	}
	orders[0].Customer = domain.CustomerSnapshot{Name: "Aarav Patel", Email: "aarav@example.com"}
	orders[1].Customer = domain.CustomerSnapshot{Name: "Meera Shah", Email: "meera.shah@example.com"}
	orders[2].Customer = domain.CustomerSnapshot{Name: "José García", Email: "jose@example.com"}
	orders[3].Customer = domain.CustomerSnapshot{Name: "Meera Iyer", Email: "iyer@example.com"}
	for i := range orders {
		orders[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	return orders
}

func pageIDs(page domain.Page[domain.Order]) []string {
	ids := make([]string, len(page.Items))
	for i, order := range page.Items {
		ids[i] = order.ID
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestApplyOrderQuerySearchIsCaseInsensitive(t *testing.T) {
	orders := queryFixtures()

	cases := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "lowercase name fragment", search: "meera", want: []string{"ord_2", "ord_4"}},
		{name: "uppercase email fragment", search: "AARAV@", want: []string{"ord_1"}},
		{name: "order number", search: "ord_3", want: []string{"ord_3"}},
		{name: "diacritic folded", search: "jose garcia", want: []string{"ord_3"}},
		{name: "no match", search: "zzz", want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := ApplyOrderQuery(orders, OrderQuery{Search: tc.search, PageSize: 10})
			if err != nil {
				t.Fatalf("ApplyOrderQuery: %v", err)
			}
			if got := pageIDs(page); !equalIDs(got, tc.want) {
				t.Fatalf("ids = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyOrderQueryFiltersCombineWithAnd(t *testing.T) {
	orders := queryFixtures()

	page, err := ApplyOrderQuery(orders, OrderQuery{
		Search:   "meera",
		Status:   domain.OrderStatusShipped,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ApplyOrderQuery: %v", err)
	}
	if got := pageIDs(page); !equalIDs(got, []string{"ord_2"}) {
		t.Fatalf("ids = %v", got)
	}
}

func TestApplyOrderQueryPreservesInputOrder(t *testing.T) {
	orders := queryFixtures()

	page, err := ApplyOrderQuery(orders, OrderQuery{Status: domain.OrderStatusShipped, PageSize: 10})
	if err != nil {
		t.Fatalf("ApplyOrderQuery: %v", err)
	}
	if got := pageIDs(page); !equalIDs(got, []string{"ord_2", "ord_3"}) {
		t.Fatalf("ids = %v", got)
	}
}

func TestApplyOrderQueryCalendarDayRespectsViewerTimezone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	orders := queryFixtures()
	// ord_1 was placed 2026-08-14T22:30Z, which is already 2026-08-15 04:00 in
	// Kolkata. ord_4 at 2026-08-15T01:30Z is also the 15th there.

	utcPage, err := ApplyOrderQuery(orders, OrderQuery{PlacedOn: "2026-08-14", Location: time.UTC, PageSize: 10})
	if err != nil {
		t.Fatalf("ApplyOrderQuery: %v", err)
	}
	if got := pageIDs(utcPage); !equalIDs(got, []string{"ord_1", "ord_2"}) {
		t.Fatalf("utc ids = %v", got)
	}

	inPage, err := ApplyOrderQuery(orders, OrderQuery{PlacedOn: "2026-08-15", Location: kolkata, PageSize: 10})
	if err != nil {
		t.Fatalf("ApplyOrderQuery: %v", err)
	}
	if got := pageIDs(inPage); !equalIDs(got, []string{"ord_1", "ord_2", "ord_3", "ord_4"}) {
		t.Fatalf("kolkata ids = %v", got)
	}
}

func TestApplyOrderQueryRejectsMalformedDay(t *testing.T) {
	_, err := ApplyOrderQuery(queryFixtures(), OrderQuery{PlacedOn: "15-08-2026"})
	if err == nil {
		t.Fatal("expected error for malformed day")
	}
}

func TestApplyOrderQueryPagination(t *testing.T) {
	orders := queryFixtures()

	cases := []struct {
		name       string
		page       int
		pageSize   int
		wantIDs    []string
		wantPages  int
		wantSize   int
		wantNumber int
	}{
		{name: "first page", page: 1, pageSize: 3, wantIDs: []string{"ord_1", "ord_2", "ord_3"}, wantPages: 2, wantSize: 3, wantNumber: 1},
		{name: "last short page", page: 2, pageSize: 3, wantIDs: []string{"ord_4"}, wantPages: 2, wantSize: 3, wantNumber: 2},
		{name: "past the end", page: 9, pageSize: 3, wantIDs: []string{}, wantPages: 2, wantSize: 3, wantNumber: 9},
		{name: "page size clamps to one", page: 2, pageSize: 0, wantIDs: []string{"ord_2"}, wantPages: 4, wantSize: 1, wantNumber: 2},
		{name: "page clamps to one", page: 0, pageSize: 2, wantIDs: []string{"ord_1", "ord_2"}, wantPages: 2, wantSize: 2, wantNumber: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := ApplyOrderQuery(orders, OrderQuery{Page: tc.page, PageSize: tc.pageSize})
			if err != nil {
				t.Fatalf("ApplyOrderQuery: %v", err)
			}
			if got := pageIDs(page); !equalIDs(got, tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tc.wantIDs)
			}
			if page.TotalCount != len(orders) {
				t.Fatalf("TotalCount = %d", page.TotalCount)
			}
			if page.TotalPages != tc.wantPages {
				t.Fatalf("TotalPages = %d, want %d", page.TotalPages, tc.wantPages)
			}
			if page.PageSize != tc.wantSize || page.Page != tc.wantNumber {
				t.Fatalf("page = %d size = %d", page.Page, page.PageSize)
			}
		})
	}
}

func TestApplyOrderQueryEmptyInput(t *testing.T) {
	page, err := ApplyOrderQuery(nil, OrderQuery{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ApplyOrderQuery: %v", err)
	}
	if len(page.Items) != 0 || page.TotalCount != 0 || page.TotalPages != 0 {
		t.Fatalf("page = %+v", page)
	}
}
