package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHashKey_RoundTrip(t *testing.T) {
	hash, err := HashKey("sekrit")
	if err != nil {
		t.Fatalf("HashKey: %v", err)
	}
	ok, err := VerifyKey("sekrit", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyKey: ok=%v err=%v", ok, err)
	}
	ok, err = VerifyKey("wrong", hash)
	if err != nil {
		t.Fatalf("VerifyKey wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong key verified")
	}
}

func TestVerifyKey_BadFormat(t *testing.T) {
	if _, err := VerifyKey("x", "not-a-hash"); err == nil {
		t.Fatal("want error for malformed hash")
	}
}

func TestRequireAdmin_AllowsAdminKey_BlocksPublicKey(t *testing.T) {
	hash, err := HashKey("adm_key")
	if err != nil {
		t.Fatal(err)
	}
	keys := Keys{
		Public:    []string{"pub_key"},
		AdminHash: hash,
	}

	// Admin key -> 200
	reqAdm := httptest.NewRequest(http.MethodGet, "/admin", nil)
	reqAdm.Header.Set("X-API-Key", "adm_key")
	recAdm := httptest.NewRecorder()
	RequireAdmin(keys)(okHandler()).ServeHTTP(recAdm, reqAdm)
	if recAdm.Code != http.StatusOK {
		t.Fatalf("admin key should pass; got %d", recAdm.Code)
	}

	// Public key -> 403
	reqPub := httptest.NewRequest(http.MethodGet, "/admin", nil)
	reqPub.Header.Set("X-API-Key", "pub_key")
	recPub := httptest.NewRecorder()
	RequireAdmin(keys)(okHandler()).ServeHTTP(recPub, reqPub)
	if recPub.Code != http.StatusForbidden {
		t.Fatalf("public key should be forbidden; got %d", recPub.Code)
	}

	// Missing key -> 403
	reqNone := httptest.NewRequest(http.MethodGet, "/admin", nil)
	recNone := httptest.NewRecorder()
	RequireAdmin(keys)(okHandler()).ServeHTTP(recNone, reqNone)
	if recNone.Code != http.StatusForbidden {
		t.Fatalf("missing key should be forbidden; got %d", recNone.Code)
	}
}

func TestRequireAny(t *testing.T) {
	hash, err := HashKey("adm_key")
	if err != nil {
		t.Fatal(err)
	}
	keys := Keys{Public: []string{"pub_key"}, AdminHash: hash}

	// Public key passes via bearer header.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer pub_key")
	rec := httptest.NewRecorder()
	RequireAny(keys)(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("public key should pass; got %d", rec.Code)
	}

	// No key -> 401.
	reqNone := httptest.NewRequest(http.MethodGet, "/", nil)
	recNone := httptest.NewRecorder()
	RequireAny(keys)(okHandler()).ServeHTTP(recNone, reqNone)
	if recNone.Code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401; got %d", recNone.Code)
	}

	// Nothing configured -> open.
	reqOpen := httptest.NewRequest(http.MethodGet, "/", nil)
	recOpen := httptest.NewRecorder()
	RequireAny(Keys{})(okHandler()).ServeHTTP(recOpen, reqOpen)
	if recOpen.Code != http.StatusOK {
		t.Fatalf("no keys configured should be open; got %d", recOpen.Code)
	}
}
