package accountdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/go-petr/market-ledger/pkg/errorspkg"
	"github.com/go-petr/market-ledger/pkg/moneypkg"
	"github.com/go-petr/market-ledger/pkg/randompkg"
	"github.com/go-petr/market-ledger/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("money", moneypkg.ValidMoney); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

func randomAccount(owner string) domain.Account {
	return domain.Account{
		ID:        domain.AccountIDFor(owner),
		OwnerID:   owner,
		Balance:   randompkg.MoneyBetween(100, 1000),
		CreatedAt: testNow,
	}
}

func newServer(service Service) *gin.Engine {
	h := NewHandler(service)
	h.now = func() time.Time { return testNow }

	server := gin.New()
	server.GET("/accounts/:owner", h.Get)
	server.POST("/accounts/:owner/topup", h.TopUp)
	server.POST("/accounts/:owner/withdraw", h.Withdraw)
	server.GET("/accounts/:owner/entries", h.Entries)

	return server
}

func TestGet(t *testing.T) {
	owner := randompkg.Username()
	account := randomAccount(owner)

	testCases := []struct {
		name           string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(service *MockService) {
				service.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(owner)).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NotFound",
			buildStubs: func(service *MockService) {
				service.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(owner)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name: "InternalError",
			buildStubs: func(service *MockService) {
				service.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(1).Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, "/accounts/"+owner, nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service).ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			res := web.Response{Data: &data{}}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

			if tc.wantStatusCode != http.StatusOK {
				require.Equal(t, tc.wantError, res.Error)
				return
			}

			if diff := cmp.Diff(account, res.Data.(*data).Account); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMove(t *testing.T) {
	owner := randompkg.Username()
	account := randomAccount(owner)
	entry := domain.Entry{
		TransactionID: "01HZX3M1J9Q7T8W6Y5V4R3P2N1",
		Timestamp:     testNow,
		Amount:        decimal.RequireFromString("25.5"),
		Kind:          domain.KindTopUp,
	}

	testCases := []struct {
		name           string
		path           string
		amount         string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:   "TopUpOK",
			path:   "topup",
			amount: "25.5",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					TopUp(gomock.Any(), gomock.Eq(owner), gomock.Eq(decimal.RequireFromString("25.5"))).
					Times(1).
					Return(account, entry, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "NegativeAmount",
			path:   "topup",
			amount: "-5",
			buildStubs: func(service *MockService) {
				service.EXPECT().TopUp(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a positive decimal amount",
		},
		{
			name:   "MissingAmount",
			path:   "withdraw",
			amount: "",
			buildStubs: func(service *MockService) {
				service.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name:   "InsufficientFunds",
			path:   "withdraw",
			amount: "5000",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(owner), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.Entry{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name:   "AccountNotFound",
			path:   "withdraw",
			amount: "1",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(owner), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.Entry{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			body, err := json.Marshal(gin.H{"amount": tc.amount})
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/accounts/"+owner+"/"+tc.path, bytes.NewReader(body))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service).ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			res := web.Response{Data: &dataMove{}}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

			if tc.wantStatusCode != http.StatusOK {
				require.Equal(t, tc.wantError, res.Error)
				return
			}

			got := res.Data.(*dataMove)
			if diff := cmp.Diff(dataMove{Account: account, Entry: entry}, *got); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntries(t *testing.T) {
	owner := randompkg.Username()
	journal := domain.Journal{
		{TransactionID: "T1", Timestamp: testNow.Add(-time.Hour), Amount: decimal.NewFromInt(10), Kind: domain.KindTopUp},
		{TransactionID: "T2", Timestamp: testNow, Amount: decimal.NewFromInt(-4), Kind: domain.KindPurchase},
	}

	testCases := []struct {
		name           string
		query          string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:  "DefaultWindow",
			query: "",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					CashFlow(gomock.Any(), gomock.Eq(owner), gomock.Eq(testNow.AddDate(0, 0, -DefaultEntriesDays))).
					Times(1).
					Return(journal, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "ThreeDays",
			query: "?days=3",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					CashFlow(gomock.Any(), gomock.Eq(owner), gomock.Eq(testNow.AddDate(0, 0, -3))).
					Times(1).
					Return(journal, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "NegativeDays",
			query: "?days=-1",
			buildStubs: func(service *MockService) {
				service.EXPECT().CashFlow(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Days must be at least 1",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, "/accounts/"+owner+"/entries"+tc.query, nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service).ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			res := web.Response{Data: &dataEntries{}}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

			if tc.wantStatusCode != http.StatusOK {
				require.Equal(t, tc.wantError, res.Error)
				return
			}

			if diff := cmp.Diff(journal, res.Data.(*dataEntries).Entries); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
