package gateway

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/backend"
	"marketgate/internal/logger"
	"marketgate/internal/nav"
	"marketgate/internal/telegram"
)

// handleQuery serves inline product search. The query carries the market
// between the marker brackets; queries without the marker (or with an empty
// search text) are left unanswered.
func (g *Gateway) handleQuery(c tele.Context) error {
	q := c.Query()
	if q == nil {
		return nil
	}
	ctx := telegram.WithHandler(c, "query.search")

	market, text, ok := parseSearchQuery(q.Text)
	if !ok || !g.knownMarket(market) {
		return nil
	}

	token, bound, err := g.credential(ctx, c.Sender().ID)
	if err != nil {
		logger.Error(ctx, "gateway", "search.lookup", slog.Any("err", err))
		return nil
	}
	if !bound {
		return nil
	}

	products, errText, err := g.backend.SearchProducts(ctx, market, token, text)
	if err != nil {
		return nil
	}
	if errText != "" {
		logger.Warn(ctx, "gateway", "search.rejected",
			slog.String("market", market),
			slog.String("cause", logger.SanitizeLimit(errText, 64)),
		)
		products = nil
	}

	logger.Info(ctx, "gateway", "search.answer",
		slog.String("market", market),
		slog.Int("items", len(products)),
	)
	return c.Answer(&tele.QueryResponse{
		Results:   buildSearchResults(market, text, products),
		CacheTime: 2,
	})
}

// parseSearchQuery splits "Search in [market]: text" into its parts.
func parseSearchQuery(q string) (market, text string, ok bool) {
	if !strings.HasPrefix(q, searchMarker) {
		return "", "", false
	}
	rest := q[len(searchMarker):]
	end := strings.Index(rest, "]:")
	if end < 0 {
		return "", "", false
	}
	market = rest[:end]
	text = strings.TrimSpace(rest[end+2:])
	return market, text, market != "" && text != ""
}

// buildSearchResults renders the product hits as inline articles. Result IDs
// are the ordinals within this answer; picking a result sends its card into
// the chat, where the attached Details button identifies the market.
func buildSearchResults(market, query string, products []backend.Product) tele.Results {
	detailsRow := [][]tele.InlineButton{{
		telegram.DataButton(btnDetails, nav.New(nav.ActionDetails, nav.KeyURL, market).Encode()),
	}}

	if len(products) == 0 {
		r := &tele.ArticleResult{
			Title:       msgSearchNotFoundTitle,
			Description: msgSearchNotFoundDesc,
		}
		r.SetResultID("0")
		r.SetContent(&tele.InputTextMessageContent{
			Text:      fmt.Sprintf(msgSearchNotFoundBody, html.EscapeString(query)),
			ParseMode: tele.ModeHTML,
		})
		r.ReplyMarkup = &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
			telegram.SwitchQueryButton("Search again", searchPrompt(market)),
		}}}
		return tele.Results{r}
	}

	results := make(tele.Results, 0, len(products))
	for i, p := range products {
		r := &tele.ArticleResult{
			Title:       p.Name,
			Description: p.Price,
		}
		r.SetResultID(strconv.Itoa(i))
		r.SetContent(&tele.InputTextMessageContent{
			Text:      renderProductCard(p),
			ParseMode: tele.ModeHTML,
		})
		r.ReplyMarkup = &tele.ReplyMarkup{InlineKeyboard: detailsRow}
		results = append(results, r)
	}
	return results
}

// renderProductCard is the short form sent into the chat when a search
// result is picked. The name is an anchor so the details handler can recover
// the product URL from the message entities.
func renderProductCard(p backend.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<a href=%q>%s</a>\n", p.ProductURL, html.EscapeString(p.Name))
	fmt.Fprintf(&b, "Price: <b>%s</b>", html.EscapeString(p.Price))
	if p.BrandName != "" {
		fmt.Fprintf(&b, "\nBrand: %s", html.EscapeString(p.BrandName))
	}
	return b.String()
}

// onDetails expands a picked search result into the full product view. The
// product URL comes from the link entity of the picked card.
func (g *Gateway) onDetails(ctx context.Context, c tele.Context, market string) error {
	if !g.knownMarket(market) {
		return nil
	}
	url, ok := messageURL(c.Message())
	if !ok {
		logger.Warn(ctx, "gateway", "details.no_url", slog.String("market", market))
		return nil
	}

	token, bound, err := g.credential(ctx, c.Chat().ID)
	if err != nil {
		logger.Error(ctx, "gateway", "details.lookup", slog.Any("err", err))
		return c.Send(msgBackendUnreachable)
	}
	if !bound {
		return c.Send(msgNoAccess)
	}

	products, errText, err := g.backend.ProductsByURL(ctx, market, token, url)
	if reply, bad := backendReply(errText, err); bad {
		return c.Send(reply)
	}
	if len(products) == 0 {
		return c.Send(fmt.Sprintf(msgDetailsFallback, url))
	}

	p := products[0]
	markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{
		{telegram.SwitchQueryButton(btnSearch, searchPrompt(market))},
	}}
	logger.Info(ctx, "gateway", "details.sent", slog.String("market", market))
	return c.Send(renderProductDetails(p), markup, tele.ModeHTML)
}

// renderProductDetails is the long form: every parsed attribute, sorted for
// a stable layout.
func renderProductDetails(p backend.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<a href=%q>%s</a>\n", p.ProductURL, html.EscapeString(p.Name))
	fmt.Fprintf(&b, "Price: <b>%s</b>\n", html.EscapeString(p.Price))
	if p.BrandName != "" {
		fmt.Fprintf(&b, "Brand: %s\n", html.EscapeString(p.BrandName))
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(p.Description))
	}
	if len(p.Details) > 0 {
		keys := make([]string, 0, len(p.Details))
		for k := range p.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", html.EscapeString(k), html.EscapeString(p.Details[k]))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// messageURL pulls the first link out of the message entities, preferring
// embedded text links over bare URLs.
func messageURL(msg *tele.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	for _, e := range msg.Entities {
		if e.Type == tele.EntityTextLink && e.URL != "" {
			return e.URL, true
		}
	}
	for _, e := range msg.Entities {
		if e.Type == tele.EntityURL {
			return msg.EntityText(e), true
		}
	}
	return "", false
}
