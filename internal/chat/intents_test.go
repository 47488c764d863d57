package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartgement/merchant-backend/pkg/enums"
)

func TestClassifyIntentParsesResponse(t *testing.T) {
	generator := &scriptedGenerator{steps: []generateStep{
		{response: `{"intent": "risk_report", "confidence": 0.92}`},
	}}

	result := classifyIntent(context.Background(), generator, "\nUser: Mana yang berisiko?\n")
	assert.Equal(t, enums.ChatIntentRiskReport, result.Intent)
	assert.Equal(t, 0.92, result.Confidence)
}

func TestClassifyIntentStripsCodeFences(t *testing.T) {
	generator := &scriptedGenerator{steps: []generateStep{
		{response: "```json\n{\"intent\": \"automation\", \"confidence\": 0.95}\n```"},
	}}

	result := classifyIntent(context.Background(), generator, "\nUser: Kosongkan stok\n")
	assert.Equal(t, enums.ChatIntentAutomation, result.Intent)
}

func TestClassifyIntentFallsBackToQuery(t *testing.T) {
	cases := []struct {
		name string
		step generateStep
	}{
		{"generator error", generateStep{err: fmt.Errorf("unavailable")}},
		{"malformed json", generateStep{response: "bukan json"}},
		{"unknown intent", generateStep{response: `{"intent": "dance", "confidence": 0.99}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			generator := &scriptedGenerator{steps: []generateStep{tc.step}}
			result := classifyIntent(context.Background(), generator, "\nUser: halo\n")
			assert.Equal(t, enums.ChatIntentQuery, result.Intent)
			assert.Equal(t, 0.5, result.Confidence)
		})
	}
}

func TestIsListRequest(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"Tampilkan semua produk", true},
		{"lihat daftar barang", true},
		{"cek stok dong", true},
		{"Produk apa saja yang saya punya?", true},
		{"Tampilkan laporan penjualan", false},
		{"Tambahkan produk Roti Tawar", false},
		{"halo", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isListRequest(tc.message), tc.message)
	}
}

func TestBuildConversationContextWithoutHistory(t *testing.T) {
	got := buildConversationContext("Berapa stok roti?", nil)
	assert.Equal(t, "\nUser: Berapa stok roti?\n", got)
}

func TestBuildConversationContextWithHistory(t *testing.T) {
	history := []HistoryTurn{
		{Role: "user", Content: "Tampilkan produk"},
		{Role: "assistant", Content: "Berikut daftar produk Anda"},
	}

	got := buildConversationContext("Yang kedua harganya berapa?", history)
	assert.Contains(t, got, "Previous conversation:\n")
	assert.Contains(t, got, "User: Tampilkan produk\n")
	assert.Contains(t, got, "Assistant: Berikut daftar produk Anda\n")
	assert.Contains(t, got, "Current message from User: Yang kedua harganya berapa?\n")
}
