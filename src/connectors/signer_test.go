package connectors

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

// TestSignParams ensures the signature matches the expected digest for a
// fixed parameter set: keys sorted, k=v joined by &, empty values omitted.
func TestSignParams(t *testing.T) {
	params := map[string]string{
		"symbol":    "ETH_USDT",
		"vol":       "0.8333",
		"side":      "1",
		"price":     "", // empty, must be omitted from the signed payload
		"timestamp": "1700000000000",
	}

	expectedMac := hmac.New(sha256.New, []byte("secret"))
	expectedMac.Write([]byte("side=1&symbol=ETH_USDT&timestamp=1700000000000&vol=0.8333"))
	expected := hex.EncodeToString(expectedMac.Sum(nil))

	got := SignParams("secret", params)
	if got != expected {
		t.Fatalf("expected signature %s, got %s", expected, got)
	}
}

// TestSignParamsDeterministic verifies repeated signing of the same
// parameters yields the same digest.
func TestSignParamsDeterministic(t *testing.T) {
	params := map[string]string{"symbol": "BTC_USDT", "vol": "1", "timestamp": "1700000000000"}

	first := SignParams("secret", params)
	second := SignParams("secret", params)
	if first != second {
		t.Fatalf("signature not deterministic: %s vs %s", first, second)
	}
}

// TestSignParamsAvalanche asserts that mutating any single parameter value,
// or the secret, produces a different signature.
func TestSignParamsAvalanche(t *testing.T) {
	base := map[string]string{
		"symbol":    "ETH_USDT",
		"vol":       "0.8333",
		"side":      "1",
		"timestamp": "1700000000000",
	}
	reference := SignParams("secret", base)

	for key := range base {
		mutated := make(map[string]string, len(base))
		for k, v := range base {
			mutated[k] = v
		}
		mutated[key] += "x"

		if got := SignParams("secret", mutated); got == reference {
			t.Fatalf("mutating %q did not change the signature", key)
		}
	}

	if got := SignParams("other-secret", base); got == reference {
		t.Fatal("changing the secret did not change the signature")
	}
}
