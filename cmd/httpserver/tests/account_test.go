//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/test"
	"github.com/go-petr/pet-ledger/pkg/web"
)

var compareDecimal = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func send(t *testing.T, h http.Handler, method, url string, body any) (*httptest.ResponseRecorder, web.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)

	var res web.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

	return recorder, res
}

func dataOf[T any](t *testing.T, res web.Response) T {
	t.Helper()

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))

	return v
}

func TestCreateAccountAPI(t *testing.T) {
	server, _ := integrationtest.SetupServer(t, config)

	testCases := []struct {
		name           string
		requestBody    gin.H
		wantStatusCode int
		wantAccount    domain.Account
		wantError      string
	}{
		{
			name:           "OK",
			requestBody:    gin.H{"holder_username": "alice", "balance": "100"},
			wantStatusCode: http.StatusOK,
			wantAccount: domain.Account{
				AccountNumber:  1,
				HolderUsername: "alice",
				Balance:        decimal.NewFromInt(100),
				CreatedAt:      time.Now().UTC(),
			},
		},
		{
			name:           "NegativeBalance",
			requestBody:    gin.H{"holder_username": "alice", "balance": "-1"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidBalance.Error(),
		},
		{
			name:           "BlankUsername",
			requestBody:    gin.H{"holder_username": "  ", "balance": "1"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidUsername.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			recorder, res := send(t, server, http.MethodPost, "/accounts", tc.requestBody)
			require.Equal(t, tc.wantStatusCode, recorder.Code)
			require.Equal(t, tc.wantError, res.Error)

			if tc.wantError != "" {
				return
			}

			got := dataOf[struct {
				Account domain.Account `json:"account"`
			}](t, res).Account

			compareCreatedAt := cmpopts.EquateApproxTime(5 * time.Second)
			if diff := cmp.Diff(tc.wantAccount, got, compareDecimal, compareCreatedAt); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLedgerAPI(t *testing.T) {
	server, db := integrationtest.SetupServer(t, config)

	account := test.SeedAccount(t, db, "alice", decimal.NewFromInt(100))
	recorder, _ := send(t, server, http.MethodPost, "/transactions/deposit",
		gin.H{"account_number": account.AccountNumber, "amount": "50"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, res := send(t, server, http.MethodPost, "/transactions/withdraw",
		gin.H{"account_number": account.AccountNumber, "amount": "200"})
	require.Equal(t, http.StatusPaymentRequired, recorder.Code)
	require.Equal(t, domain.ErrInsufficientFunds.Error(), res.Error)

	recorder, _ = send(t, server, http.MethodPost, "/transactions/withdraw",
		gin.H{"account_number": account.AccountNumber, "amount": "150"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, res = send(t, server, http.MethodGet, "/transactions/history/1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	history := dataOf[struct {
		Transactions []domain.Transaction `json:"transactions"`
	}](t, res).Transactions

	want := []domain.Transaction{
		{Kind: domain.KindWithdrawal, AccountNumber: 1, Amount: decimal.NewFromInt(150), ResultingBalance: decimal.Zero},
		{Kind: domain.KindDeposit, AccountNumber: 1, Amount: decimal.NewFromInt(50), ResultingBalance: decimal.NewFromInt(150)},
	}

	ignore := cmpopts.IgnoreFields(domain.Transaction{}, "ID", "CreatedAt")
	if diff := cmp.Diff(want, history, compareDecimal, ignore); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentWithdrawalsAPI(t *testing.T) {
	server, db := integrationtest.SetupServer(t, config)

	account := test.SeedAccount(t, db, "bob", decimal.NewFromInt(100))

	const n = 10

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			body, _ := json.Marshal(gin.H{"account_number": account.AccountNumber, "amount": "30"})
			req := httptest.NewRequest(http.MethodPost, "/transactions/withdraw", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			mu.Lock()
			codes[recorder.Code]++
			mu.Unlock()
		}()
	}

	wg.Wait()

	require.Equal(t, 3, codes[http.StatusOK])
	require.Equal(t, n-3, codes[http.StatusPaymentRequired])

	recorder, res := send(t, server, http.MethodGet, "/accounts/1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, dataOf[struct {
		Account domain.Account `json:"account"`
	}](t, res).Account.Balance.Equal(decimal.NewFromInt(10)))
}

func TestDeleteAccountAPI(t *testing.T) {
	server, db := integrationtest.SetupServer(t, config)

	account := test.SeedAccountWith1000Balance(t, db)

	recorder, _ := send(t, server, http.MethodPost, "/accounts/1/delete", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, res := send(t, server, http.MethodGet, "/accounts/1", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, domain.ErrAccountNotFound.Error(), res.Error)

	recorder, res = send(t, server, http.MethodGet, "/accounts?username="+account.HolderUsername, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Empty(t, dataOf[struct {
		Accounts []domain.Account `json:"accounts"`
	}](t, res).Accounts)

	recorder, _ = send(t, server, http.MethodPost, "/accounts/1/delete", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}
