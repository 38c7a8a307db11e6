package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"clanbuy/internal/models"
)

func TestReferralLinkIsIdempotent(t *testing.T) {
	engine, db, cfg := newTestServer(t)
	user := seedUser(t, db, "alice@example.com")
	bearer := bearerFor(t, cfg, user)

	w := doJSON(engine, http.MethodPost, "/api/v1/viral/referral-link", bearer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	first := decodeBody(t, w)
	code, _ := first["code"].(string)
	if len(code) != 8 {
		t.Errorf("code = %q, want 8 hex chars", code)
	}
	link, _ := first["referralLink"].(string)
	if !strings.HasSuffix(link, code) || !strings.HasPrefix(link, cfg.Referral.LinkBase) {
		t.Errorf("referralLink = %q, want %s%s", link, cfg.Referral.LinkBase, code)
	}

	w = doJSON(engine, http.MethodPost, "/api/v1/viral/referral-link", bearer, nil)
	second := decodeBody(t, w)
	if second["code"] != code {
		t.Errorf("second call code = %v, want same %q", second["code"], code)
	}
}

func TestReferralLinkRequiresAuth(t *testing.T) {
	engine, _, _ := newTestServer(t)
	w := doJSON(engine, http.MethodPost, "/api/v1/viral/referral-link", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestTrackReferral(t *testing.T) {
	engine, db, cfg := newTestServer(t)
	user := seedUser(t, db, "alice@example.com")
	bearer := bearerFor(t, cfg, user)

	w := doJSON(engine, http.MethodPost, "/api/v1/viral/referral-link", bearer, nil)
	code := decodeBody(t, w)["code"].(string)

	// Known code records a click.
	w = doJSON(engine, http.MethodPost, "/api/v1/viral/track-referral",
		"", map[string]string{"referralCode": code, "visitorId": "v-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var clicks int64
	db.Model(&models.ReferralClick{}).Where("referral_code = ?", code).Count(&clicks)
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}

	// Unknown codes are silently ignored, never an error.
	w = doJSON(engine, http.MethodPost, "/api/v1/viral/track-referral",
		"", map[string]string{"referralCode": "nosuchcode"})
	if w.Code != http.StatusOK {
		t.Fatalf("unknown code status = %d, want 200", w.Code)
	}
	if success, _ := decodeBody(t, w)["success"].(bool); !success {
		t.Error("unknown code: success != true")
	}
	db.Model(&models.ReferralClick{}).Count(&clicks)
	if clicks != 1 {
		t.Errorf("clicks after unknown code = %d, want still 1", clicks)
	}
}

func TestClanStatsEndpoint(t *testing.T) {
	engine, db, cfg := newTestServer(t)
	product := seedProduct(t, db, "100.00", 0, false)
	leader := seedUser(t, db, "leader@example.com")
	bearer := bearerFor(t, cfg, leader)

	w := doJSON(engine, http.MethodPost, "/api/v1/viral/clans", bearer, map[string]interface{}{
		"productId":     product.ID,
		"clanPrice":     "80.00",
		"requiredCount": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create clan status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(engine, http.MethodGet, "/api/v1/viral/clan-stats/1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	stats := decodeBody(t, w)
	if stats["activeClans"].(float64) != 1 {
		t.Errorf("activeClans = %v, want 1", stats["activeClans"])
	}
	if stats["totalMembers"].(float64) != 1 {
		t.Errorf("totalMembers = %v, want 1", stats["totalMembers"])
	}

	// Unknown product surfaces as 404.
	w = doJSON(engine, http.MethodGet, "/api/v1/viral/clan-stats/999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d, want 404", w.Code)
	}
}
