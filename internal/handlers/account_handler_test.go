package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
)

func TestAccountHandlers(t *testing.T) {
	router, testDB, _ := setupTestRouter(t)
	customer := seedCustomer(t, testDB, "Owner")

	var accountID uint

	t.Run("Creates an account with a hashed password", func(t *testing.T) {
		recorder := performRequest(router, http.MethodPost, "/Customer_Accounts", map[string]interface{}{
			"username": "owner", "password": "hunter22", "customer_id": customer.ID,
		})

		assert.Equal(t, http.StatusCreated, recorder.Code)
		response := decode[map[string]interface{}](t, recorder)
		assert.Equal(t, "A new account has been created!", response["message"])
		accountID = uint(response["id"].(float64))

		var stored models.CustomerAccount
		require.NoError(t, testDB.First(&stored, accountID).Error)
		assert.NotEqual(t, "hunter22", stored.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))
		require.NotNil(t, stored.CustomerID)
		assert.Equal(t, customer.ID, *stored.CustomerID)
	})

	t.Run("Serialises id, username, password and customer_id", func(t *testing.T) {
		recorder := performRequest(router, http.MethodGet, fmt.Sprintf("/Customer_Accounts/%d", accountID), nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		account := decode[map[string]interface{}](t, recorder)
		assert.ElementsMatch(t, []string{"id", "username", "password", "customer_id"}, keys(account))
		assert.Equal(t, "owner", account["username"])
		assert.Equal(t, float64(customer.ID), account["customer_id"])
	})

	t.Run("Rejects a duplicate username before commit", func(t *testing.T) {
		recorder := performRequest(router, http.MethodPost, "/Customer_Accounts", map[string]string{
			"username": "owner", "password": "other",
		})

		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.JSONEq(t, `{"error":"username already exists"}`, recorder.Body.String())

		var count int64
		testDB.Model(&models.CustomerAccount{}).Where("username = ?", "owner").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Rejects an unknown customer", func(t *testing.T) {
		recorder := performRequest(router, http.MethodPost, "/Customer_Accounts", map[string]interface{}{
			"username": "ghost", "password": "pw", "customer_id": 9999,
		})

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.JSONEq(t, `{"error":"customer not found"}`, recorder.Body.String())
	})

	t.Run("Returns 400 without a password", func(t *testing.T) {
		recorder := performRequest(router, http.MethodPost, "/Customer_Accounts", map[string]string{"username": "nopass"})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		errs := decode[map[string][]string](t, recorder)
		assert.Equal(t, []string{"Missing data for required field."}, errs["password"])
	})

	t.Run("Updates an account keeping its own username", func(t *testing.T) {
		recorder := performRequest(router, http.MethodPut, fmt.Sprintf("/Customer_Accounts/%d", accountID), map[string]string{
			"username": "owner", "password": "new-secret",
		})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"message":"The account information has been updated!"}`, recorder.Body.String())

		var stored models.CustomerAccount
		require.NoError(t, testDB.First(&stored, accountID).Error)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-secret")))
		assert.Nil(t, stored.CustomerID, "update replaces every field")
	})

	t.Run("Update cannot take another account's username", func(t *testing.T) {
		other := models.CustomerAccount{AccountFields: models.AccountFields{Username: "taken", Password: "x"}}
		require.NoError(t, testDB.Create(&other).Error)

		recorder := performRequest(router, http.MethodPut, fmt.Sprintf("/Customer_Accounts/%d", accountID), map[string]string{
			"username": "taken", "password": "pw",
		})
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("Accepts empty strings as present values", func(t *testing.T) {
		recorder := performRequest(router, http.MethodPost, "/Customer_Accounts", `{"username":"","password":""}`)

		assert.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	})

	t.Run("Lists accounts", func(t *testing.T) {
		recorder := performRequest(router, http.MethodGet, "/Customer_Accounts", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Len(t, decode[[]models.CustomerAccount](t, recorder), 3)
	})

	t.Run("Deletes an account", func(t *testing.T) {
		recorder := performRequest(router, http.MethodDelete, fmt.Sprintf("/Customer_Accounts/%d", accountID), nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		recorder = performRequest(router, http.MethodGet, fmt.Sprintf("/Customer_Accounts/%d", accountID), nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.JSONEq(t, `{"error":"account not found"}`, recorder.Body.String())
	})
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
