package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"marketgate/internal/backend"
	"marketgate/internal/config"
	"marketgate/internal/nav"
	"marketgate/internal/store"
)

// recordingContext satisfies the handful of tele.Context methods the catalog
// handlers touch and records what they render.
type recordingContext struct {
	tele.Context

	chat   *tele.Chat
	sender *tele.User
	kv     map[string]interface{}

	edits    []interface{}
	responds []*tele.CallbackResponse
}

func newRecordingContext(chatID int64) *recordingContext {
	return &recordingContext{
		chat:   &tele.Chat{ID: chatID},
		sender: &tele.User{ID: chatID},
		kv:     make(map[string]interface{}),
	}
}

func (r *recordingContext) Chat() *tele.Chat    { return r.chat }
func (r *recordingContext) Sender() *tele.User  { return r.sender }
func (r *recordingContext) Update() tele.Update { return tele.Update{ID: 1} }

func (r *recordingContext) Get(key string) interface{}      { return r.kv[key] }
func (r *recordingContext) Set(key string, val interface{}) { r.kv[key] = val }

func (r *recordingContext) Edit(what interface{}, opts ...interface{}) error {
	r.edits = append(r.edits, what)
	r.edits = append(r.edits, opts...)
	return nil
}

func (r *recordingContext) Respond(resp ...*tele.CallbackResponse) error {
	r.responds = append(r.responds, resp...)
	return nil
}

func browseGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *recordingContext) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "x", AdminID: 42},
		Markets:  []config.Market{{Prefix: "marketA", Title: "Market A"}},
	}
	st := store.NewMemory()
	if err := st.Approve(context.Background(), 7, "tok-7"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	bc := backend.New(strings.TrimPrefix(srv.URL, "http://"), 2*time.Second)
	return New(cfg, st, bc), newRecordingContext(7)
}

func TestBrowseRejectionReplacesMessageBody(t *testing.T) {
	g, c := browseGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("Could not validate credentials"))
	})

	tok := nav.New(nav.ActionStore, nav.KeyBrowse, "marketA")
	if err := g.onBrowse(context.Background(), c, tok); err != nil {
		t.Fatalf("onBrowse: %v", err)
	}

	if len(c.edits) != 1 {
		t.Fatalf("edits = %d, want the rejection as the new message body", len(c.edits))
	}
	if got, ok := c.edits[0].(string); !ok || got != "Could not validate credentials" {
		t.Errorf("edited body = %#v", c.edits[0])
	}
	for _, resp := range c.responds {
		if resp.ShowAlert {
			t.Errorf("rejection must not raise an alert: %+v", resp)
		}
	}
}

func TestBrowseTransportFaultAlerts(t *testing.T) {
	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "x", AdminID: 42},
		Markets:  []config.Market{{Prefix: "marketA", Title: "Market A"}},
	}
	st := store.NewMemory()
	if err := st.Approve(context.Background(), 7, "tok-7"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	g := New(cfg, st, backend.New("127.0.0.1:1", 300*time.Millisecond))
	c := newRecordingContext(7)

	tok := nav.New(nav.ActionStore, nav.KeyBrowse, "marketA")
	if err := g.onBrowse(context.Background(), c, tok); err != nil {
		t.Fatalf("onBrowse: %v", err)
	}

	if len(c.edits) != 0 {
		t.Errorf("transport fault must not edit the message: %#v", c.edits)
	}
	if len(c.responds) != 1 || !c.responds[0].ShowAlert || c.responds[0].Text != msgBackendUnreachable {
		t.Errorf("responds = %+v, want a single %q alert", c.responds, msgBackendUnreachable)
	}
}

func TestBrowseRendersListing(t *testing.T) {
	g, c := browseGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"link":"https://shop.example/cat/0"}]`))
	})

	tok := nav.New(nav.ActionStore, nav.KeyBrowse, "marketA")
	if err := g.onBrowse(context.Background(), c, tok); err != nil {
		t.Fatalf("onBrowse: %v", err)
	}

	if len(c.edits) != 2 {
		t.Fatalf("edits = %#v, want header text plus markup", c.edits)
	}
	if got, ok := c.edits[0].(string); !ok || got != msgListingHeader {
		t.Errorf("body = %#v", c.edits[0])
	}
	markup, ok := c.edits[1].(*tele.ReplyMarkup)
	if !ok || len(markup.InlineKeyboard) != 4 {
		t.Errorf("markup = %#v, want 1 item row + 3 controls", c.edits[1])
	}
}
