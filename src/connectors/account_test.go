package connectors

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestDecodeAvailable exercises every known asset payload shape plus the
// three observably different failure outcomes: zero balance, missing field
// (API drift), and absent asset.
func TestDecodeAvailable(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
		wantErr string
	}{
		{
			name:    "object shape with availableBalance",
			payload: `{"currency":"USDT","availableBalance":123.45}`,
			want:    "123.45",
		},
		{
			name:    "object shape with string amount",
			payload: `{"currency":"USDT","availableBalance":"99.9"}`,
			want:    "99.9",
		},
		{
			name:    "list shape with availableCash fallback",
			payload: `[{"currency":"BTC","availableBalance":1},{"currency":"USDT","availableCash":42}]`,
			want:    "42",
		},
		{
			name:    "zero balance is a valid value, not an error",
			payload: `{"currency":"USDT","availableBalance":0}`,
			want:    "0",
		},
		{
			name:    "available field missing is API drift",
			payload: `{"currency":"USDT","marginBalance":10}`,
			wantErr: "no available field",
		},
		{
			name:    "asset absent from list",
			payload: `[{"currency":"BTC","availableBalance":1}]`,
			wantErr: "not present",
		},
		{
			name:    "unrecognized shape",
			payload: `"what"`,
			wantErr: "unrecognized",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeAvailable(json.RawMessage(tc.payload), "USDT")
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(mustDecimal(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got.String())
			}
		})
	}
}
