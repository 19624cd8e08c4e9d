package accountservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

func randomAccount() domain.Account {
	return domain.Account{
		AccountNumber:  randompkg.IntBetween(1, 1000),
		HolderUsername: randompkg.Username(),
		Balance:        randompkg.MoneyAmountBetween(0, 1000),
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}

// balanceEq matches decimals by value so "100" and "100.00" compare equal.
type balanceEq struct{ want decimal.Decimal }

func (m balanceEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m balanceEq) String() string { return "is equal to " + m.want.String() }

func TestCreate(t *testing.T) {
	testAccount := randomAccount()

	type input struct {
		username string
		balance  string
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, res domain.Account, err error)
	}{
		{
			name:  "OK",
			input: input{username: testAccount.HolderUsername, balance: testAccount.Balance.String()},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(testAccount.HolderUsername), balanceEq{testAccount.Balance}).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, testAccount, res)
			},
		},
		{
			name:  "ZeroBalance",
			input: input{username: "  " + testAccount.HolderUsername + " ", balance: "0"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(testAccount.HolderUsername), balanceEq{decimal.Zero}).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:  "EmptyUsername",
			input: input{username: "   ", balance: "10"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidUsername)
				require.Empty(t, res)
			},
		},
		{
			name:  "NotANumber",
			input: input{username: testAccount.HolderUsername, balance: "ten"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidBalance)
			},
		},
		{
			name:  "NegativeBalance",
			input: input{username: testAccount.HolderUsername, balance: "-0.01"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidBalance)
			},
		},
		{
			name:  "RepoError",
			input: input{username: testAccount.HolderUsername, balance: "1"},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrUpstreamUnavailable)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.ErrorIs(t, err, errorspkg.ErrUpstreamUnavailable)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo, time.Second)
			res, err := service.Create(context.Background(), tc.input.username, tc.input.balance)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestCreateAppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ decimal.Decimal) (domain.Account, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			return domain.Account{}, nil
		})

	_, err := New(repo, time.Minute).Create(context.Background(), "alice", "100")
	require.NoError(t, err)
}

func TestGet(t *testing.T) {
	testAccount := randomAccount()

	testCases := []struct {
		name          string
		accountNumber int64
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, res domain.Account, err error)
	}{
		{
			name:          "OK",
			accountNumber: testAccount.AccountNumber,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(testAccount.AccountNumber)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, testAccount, res)
			},
		},
		{
			name:          "InvalidNumber",
			accountNumber: 0,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAccountNumber)
			},
		},
		{
			name:          "NotFound",
			accountNumber: testAccount.AccountNumber,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(testAccount.AccountNumber)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			res, err := New(repo, time.Second).Get(context.Background(), tc.accountNumber)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestListByUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := []domain.Account{randomAccount(), randomAccount()}

	repo := NewMockRepo(ctrl)
	repo.EXPECT().ListByUsername(gomock.Any(), gomock.Eq("alice")).Times(1).Return(accounts, nil)

	service := New(repo, time.Second)

	res, err := service.ListByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, accounts, res)

	_, err = service.ListByUsername(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidUsername)
}

func TestDelete(t *testing.T) {
	testCases := []struct {
		name          string
		accountNumber int64
		buildStubs    func(repo *MockRepo)
		wantErr       error
	}{
		{
			name:          "OK",
			accountNumber: 7,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Delete(gomock.Any(), gomock.Eq(int64(7))).Times(1).Return(nil)
			},
		},
		{
			name:          "InvalidNumber",
			accountNumber: -1,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAccountNumber,
		},
		{
			name:          "AlreadyClosed",
			accountNumber: 7,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Delete(gomock.Any(), gomock.Eq(int64(7))).Times(1).Return(domain.ErrAccountNotFound)
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			err := New(repo, time.Second).Delete(context.Background(), tc.accountNumber)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
