package telegram

import tele "gopkg.in/telebot.v4"

// DataButton builds an inline button carrying raw callback data. The data is
// sent verbatim, without telebot's unique-prefix encoding, so the gateway's
// token protocol owns the whole payload.
func DataButton(text, data string) tele.InlineButton {
	return tele.InlineButton{Text: text, Data: data}
}

// SwitchQueryButton builds an inline button that opens the inline-search
// surface in the current chat with the query prefilled.
func SwitchQueryButton(text, query string) tele.InlineButton {
	return tele.InlineButton{Text: text, InlineQueryChat: query}
}

// InlineRows assembles a reply markup from button rows.
func InlineRows(rows ...[]tele.InlineButton) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// SingleColumn places each button on its own row.
func SingleColumn(buttons ...tele.InlineButton) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []tele.InlineButton{b})
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
