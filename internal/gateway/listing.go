package gateway

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/backend"
	"marketgate/internal/nav"
	"marketgate/internal/telegram"
)

// buildListing renders the tracked links of a market as an inline keyboard:
// one row per link (the link itself plus a delete button), followed by the
// fixed control rows. Item ordinals double as callback payloads, so the rows
// must be renumbered whenever one is removed.
func buildListing(market string, items []backend.Item) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, len(items)+3)
	for i, item := range items {
		rows = append(rows, itemRow(market, i, item.Link))
	}
	rows = append(rows,
		[]tele.InlineButton{telegram.DataButton(btnAdd, nav.New(nav.ActionStore, nav.KeyAdd, market).Encode())},
		[]tele.InlineButton{telegram.SwitchQueryButton(btnSearch, searchPrompt(market))},
		[]tele.InlineButton{telegram.DataButton(btnBack, nav.New(nav.ActionStore, nav.KeyList, market).Encode())},
	)
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

func itemRow(market string, index int, link string) []tele.InlineButton {
	return []tele.InlineButton{
		telegram.DataButton(link, nav.New(nav.ActionStore, nav.KeySend, strconv.Itoa(index)).Encode()),
		telegram.DataButton(btnDelete, nav.New(nav.ActionStore, nav.KeyDelete, nav.JoinMarketIndex(market, index)).Encode()),
	}
}

// removeItemRow drops the item row at index and renumbers the remaining item
// rows so their send/delete payloads address their new positions. Control
// rows (single button) pass through untouched.
func removeItemRow(rows [][]tele.InlineButton, market string, index int) [][]tele.InlineButton {
	out := make([][]tele.InlineButton, 0, len(rows)-1)
	next := 0
	for i, row := range rows {
		if !isItemRow(row) {
			out = append(out, row)
			continue
		}
		if itemIndex(rows, i) == index {
			continue
		}
		out = append(out, itemRow(market, next, row[0].Text))
		next++
	}
	return out
}

// isItemRow distinguishes link rows from the trailing controls: only link
// rows carry the two-button link/delete shape.
func isItemRow(row []tele.InlineButton) bool {
	return len(row) == 2 && row[1].Text == btnDelete
}

// itemIndex returns the ordinal of the item row at position pos among the
// item rows only.
func itemIndex(rows [][]tele.InlineButton, pos int) int {
	n := 0
	for i := 0; i < pos; i++ {
		if isItemRow(rows[i]) {
			n++
		}
	}
	return n
}

func searchPrompt(market string) string {
	return fmt.Sprintf("%s%s]: ", searchMarker, market)
}
