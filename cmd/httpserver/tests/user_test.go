package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAPI(t *testing.T) {
	server := newServer(t, tempSource(t))

	var seeded struct {
		User domain.User `json:"user"`
	}

	code, _ := call(t, server, http.MethodPost, "/users", gin.H{"username": "seeded", "role": "seller"}, &seeded)
	require.Equal(t, http.StatusCreated, code)

	testCases := []struct {
		name           string
		requestBody    gin.H
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "OK",
			requestBody:    gin.H{"username": "firstuser", "role": "buyer"},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "InvalidUsername",
			requestBody:    gin.H{"username": "user&%", "role": "buyer"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Username accepts only alphanumeric characters",
		},
		{
			name:           "ShortUsername",
			requestBody:    gin.H{"username": "ab", "role": "buyer"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Username must be at least 3",
		},
		{
			name:           "MissingRole",
			requestBody:    gin.H{"username": "norole"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Role field is required",
		},
		{
			name:           "InvalidRole",
			requestBody:    gin.H{"username": "admin", "role": "admin"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Role must be buyer or seller",
		},
		{
			name:           "UniqueViolationUsername",
			requestBody:    gin.H{"username": seeded.User.Username, "role": "buyer"},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrUsernameAlreadyExists.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			var got struct {
				User domain.User `json:"user"`
			}

			code, errMsg := call(t, server, http.MethodPost, "/users", tc.requestBody, &got)
			require.Equal(t, tc.wantStatusCode, code)
			require.Equal(t, tc.wantError, errMsg)

			if tc.wantStatusCode != http.StatusCreated {
				return
			}

			want := domain.User{
				ID:        got.User.ID,
				Username:  tc.requestBody["username"].(string),
				Role:      domain.Role(tc.requestBody["role"].(string)),
				AccountID: domain.AccountIDFor(got.User.ID),
			}

			ignoreCreatedAt := cmpopts.IgnoreFields(domain.User{}, "CreatedAt")
			if diff := cmp.Diff(want, got.User, ignoreCreatedAt); diff != "" {
				t.Errorf("got.User mismatch (-want +got):\n%s", diff)
			}

			delta := cmpopts.EquateApproxTime(time.Minute)
			if !cmp.Equal(got.User.CreatedAt, time.Now(), delta) {
				t.Errorf("got.User.CreatedAt=%v, want now +- minute", got.User.CreatedAt)
			}

			var acc struct {
				Account domain.Account `json:"account"`
			}

			code, _ = call(t, server, http.MethodGet, "/accounts/"+got.User.ID, nil, &acc)
			require.Equal(t, http.StatusOK, code)
			require.True(t, acc.Account.Balance.IsZero())
		})
	}
}

func TestGetUserAPI(t *testing.T) {
	server := newServer(t, tempSource(t))

	var created struct {
		User domain.User `json:"user"`
	}

	code, _ := call(t, server, http.MethodPost, "/users", gin.H{"username": "getme", "role": "buyer"}, &created)
	require.Equal(t, http.StatusCreated, code)

	var got struct {
		User domain.User `json:"user"`
	}

	code, _ = call(t, server, http.MethodGet, "/users/"+created.User.ID, nil, &got)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, created.User.ID, got.User.ID)
	require.Equal(t, "getme", got.User.Username)

	code, errMsg := call(t, server, http.MethodGet, "/users/ghost", nil, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, domain.ErrUserNotFound.Error(), errMsg)
}
