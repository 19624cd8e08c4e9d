package historyservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
)

func TestHistory(t *testing.T) {
	closedAt := time.Now().UTC()
	items := []domain.Transaction{
		{ID: 2, Kind: domain.KindWithdrawal, AccountNumber: 4},
		{ID: 1, Kind: domain.KindDeposit, AccountNumber: 4},
	}

	testCases := []struct {
		name          string
		accountNumber int64
		buildStubs    func(accounts *MockAccountRepo, repo *MockRepo)
		checkResponse func(t *testing.T, res []domain.Transaction, err error)
	}{
		{
			name:          "OK",
			accountNumber: 4,
			buildStubs: func(accounts *MockAccountRepo, repo *MockRepo) {
				accounts.EXPECT().Find(gomock.Any(), gomock.Eq(int64(4))).Times(1).
					Return(domain.Account{AccountNumber: 4}, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(int64(4))).Times(1).Return(items, nil)
			},
			checkResponse: func(t *testing.T, res []domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, items, res)
			},
		},
		{
			name:          "ClosedAccountKeepsHistory",
			accountNumber: 4,
			buildStubs: func(accounts *MockAccountRepo, repo *MockRepo) {
				accounts.EXPECT().Find(gomock.Any(), gomock.Eq(int64(4))).Times(1).
					Return(domain.Account{AccountNumber: 4, ClosedAt: &closedAt}, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(int64(4))).Times(1).Return(items, nil)
			},
			checkResponse: func(t *testing.T, res []domain.Transaction, err error) {
				require.NoError(t, err)
				require.Len(t, res, 2)
			},
		},
		{
			name:          "NoTransactions",
			accountNumber: 4,
			buildStubs: func(accounts *MockAccountRepo, repo *MockRepo) {
				accounts.EXPECT().Find(gomock.Any(), gomock.Any()).Times(1).Return(domain.Account{AccountNumber: 4}, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(1).Return(nil, nil)
			},
			checkResponse: func(t *testing.T, res []domain.Transaction, err error) {
				require.NoError(t, err)
				require.NotNil(t, res)
				require.Empty(t, res)
			},
		},
		{
			name:          "UnknownAccount",
			accountNumber: 99,
			buildStubs: func(accounts *MockAccountRepo, repo *MockRepo) {
				accounts.EXPECT().Find(gomock.Any(), gomock.Eq(int64(99))).Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res []domain.Transaction, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
				require.Nil(t, res)
			},
		},
		{
			name:          "InvalidNumber",
			accountNumber: 0,
			buildStubs: func(accounts *MockAccountRepo, repo *MockRepo) {
				accounts.EXPECT().Find(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res []domain.Transaction, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAccountNumber)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			accounts := NewMockAccountRepo(ctrl)
			repo := NewMockRepo(ctrl)
			tc.buildStubs(accounts, repo)

			res, err := New(accounts, repo, time.Second).History(context.Background(), tc.accountNumber)
			tc.checkResponse(t, res, err)
		})
	}
}
