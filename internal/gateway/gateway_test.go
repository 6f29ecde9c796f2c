package gateway

import (
	"errors"
	"testing"
	"time"

	"marketgate/internal/backend"
	"marketgate/internal/config"
	"marketgate/internal/nav"
	"marketgate/internal/store"
)

func testGateway(t *testing.T) *Gateway {
	t.Helper()
	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "x", AdminID: 42},
		Markets: []config.Market{
			{Prefix: "marketA", Title: "Market A"},
			{Prefix: "resurs_media", Title: "Resurs Media"},
		},
	}
	return New(cfg, store.NewMemory(), backend.New("backend:8000", time.Second))
}

func TestStoreMenu(t *testing.T) {
	g := testGateway(t)
	rows := g.storeMenu().InlineKeyboard

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want one per market", len(rows))
	}
	if rows[0][0].Text != "Market A" || rows[0][0].Data != "get_store:browse:marketA" {
		t.Errorf("first row = %+v", rows[0][0])
	}
	if rows[1][0].Data != "get_store:browse:resurs_media" {
		t.Errorf("second row = %+v", rows[1][0])
	}
}

func TestKnownMarket(t *testing.T) {
	g := testGateway(t)
	if !g.knownMarket("marketA") {
		t.Error("configured market not recognized")
	}
	if g.knownMarket("bogus") {
		t.Error("unknown market accepted")
	}
}

func TestCallbackDispatchTableCoversVocabulary(t *testing.T) {
	g := testGateway(t)
	routable := []struct {
		action nav.Action
		key    nav.Key
	}{
		{nav.ActionAccess, nav.KeyAllow},
		{nav.ActionAccess, nav.KeyDeny},
		{nav.ActionAccess, nav.KeyBlock},
		{nav.ActionStore, nav.KeyBrowse},
		{nav.ActionStore, nav.KeyList},
		{nav.ActionStore, nav.KeySend},
		{nav.ActionStore, nav.KeyDelete},
		{nav.ActionStore, nav.KeyAdd},
	}
	for _, r := range routable {
		if g.callbacks[r.action][r.key] == nil {
			t.Errorf("no handler for %s:%s", r.action, r.key)
		}
	}
	if g.callbacks[nav.ActionStore][nav.Key("drop_table")] != nil {
		t.Error("unexpected handler for unknown key")
	}
	if g.callbacks[nav.Action("admin")] != nil {
		t.Error("unexpected handler table for unknown action")
	}
}

func TestBackendReply(t *testing.T) {
	if reply, bad := backendReply("", nil); bad {
		t.Errorf("clean outcome flagged: %q", reply)
	}
	if reply, bad := backendReply("Link already registered", nil); !bad || reply != "Link already registered" {
		t.Errorf("rejection not relayed: %q", reply)
	}
	if reply, bad := backendReply("", errTransport); !bad || reply != msgBackendUnreachable {
		t.Errorf("transport fault not masked: %q", reply)
	}
}

var errTransport = errors.New("dial tcp: connection refused")
