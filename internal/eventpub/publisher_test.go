package eventpub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
)

func TestEncode(t *testing.T) {
	event := domain.TransactionCompleted{
		TransactionID: 9,
		AccountNumber: 3,
		Kind:          domain.KindDeposit,
		Amount:        decimal.RequireFromString("12.50"),
	}

	msg, err := encode("3", event)
	require.NoError(t, err)
	require.Equal(t, []byte("3"), msg.Key)
	require.False(t, msg.Time.IsZero())

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	require.Equal(t, "deposit", got["kind"])
	require.Equal(t, "12.5", got["amount"])
}

func TestEncodeError(t *testing.T) {
	_, err := encode("k", make(chan int))
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	p := New(nil, "transactions", zerolog.Nop())
	require.IsType(t, NopPublisher{}, p)
	require.NoError(t, p.Publish(context.Background(), "k", struct{}{}))
	require.NoError(t, p.Close())

	p = New([]string{"localhost:9092"}, "", zerolog.Nop())
	require.IsType(t, NopPublisher{}, p)

	p = New([]string{"localhost:9092"}, "transactions", zerolog.Nop())
	require.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.Close())
}
