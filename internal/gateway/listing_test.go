package gateway

import (
	"fmt"
	"testing"

	"marketgate/internal/backend"
)

func sampleItems(n int) []backend.Item {
	items := make([]backend.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, backend.Item{Link: fmt.Sprintf("https://shop.example/cat/%d", i)})
	}
	return items
}

func TestBuildListingShape(t *testing.T) {
	markup := buildListing("marketA", sampleItems(3))
	rows := markup.InlineKeyboard

	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 3 items + 3 controls", len(rows))
	}
	for i := 0; i < 3; i++ {
		if !isItemRow(rows[i]) {
			t.Fatalf("row %d is not an item row: %+v", i, rows[i])
		}
		if got, want := rows[i][0].Data, fmt.Sprintf("get_store:send:%d", i); got != want {
			t.Errorf("send payload = %q, want %q", got, want)
		}
		if got, want := rows[i][1].Data, fmt.Sprintf("get_store:delete:marketA_%d", i); got != want {
			t.Errorf("delete payload = %q, want %q", got, want)
		}
	}
	if rows[3][0].Data != "get_store:add:marketA" {
		t.Errorf("add payload = %q", rows[3][0].Data)
	}
	if rows[4][0].InlineQueryChat != "Search in [marketA]: " {
		t.Errorf("search prompt = %q", rows[4][0].InlineQueryChat)
	}
	if rows[5][0].Data != "get_store:list:marketA" {
		t.Errorf("back payload = %q", rows[5][0].Data)
	}
}

func TestRemoveItemRowRenumbers(t *testing.T) {
	markup := buildListing("marketA", sampleItems(5))
	rows := removeItemRow(markup.InlineKeyboard, "marketA", 2)

	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 4 items + 3 controls", len(rows))
	}

	wantLinks := []string{
		"https://shop.example/cat/0",
		"https://shop.example/cat/1",
		"https://shop.example/cat/3",
		"https://shop.example/cat/4",
	}
	for i, link := range wantLinks {
		row := rows[i]
		if !isItemRow(row) {
			t.Fatalf("row %d is not an item row", i)
		}
		if row[0].Text != link {
			t.Errorf("row %d link = %q, want %q", i, row[0].Text, link)
		}
		if got, want := row[0].Data, fmt.Sprintf("get_store:send:%d", i); got != want {
			t.Errorf("row %d send payload = %q, want %q", i, got, want)
		}
		if got, want := row[1].Data, fmt.Sprintf("get_store:delete:marketA_%d", i); got != want {
			t.Errorf("row %d delete payload = %q, want %q", i, got, want)
		}
	}

	// Control rows survive untouched.
	if rows[4][0].Data != "get_store:add:marketA" {
		t.Errorf("add payload after delete = %q", rows[4][0].Data)
	}
	if rows[6][0].Data != "get_store:list:marketA" {
		t.Errorf("back payload after delete = %q", rows[6][0].Data)
	}
}

func TestRemoveItemRowLastItem(t *testing.T) {
	markup := buildListing("marketA", sampleItems(1))
	rows := removeItemRow(markup.InlineKeyboard, "marketA", 0)

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want controls only", len(rows))
	}
	for i, row := range rows {
		if isItemRow(row) {
			t.Errorf("row %d still looks like an item row", i)
		}
	}
}
