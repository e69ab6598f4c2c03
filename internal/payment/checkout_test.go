package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	confirmStatus string
	confirmErr    error
	confirms      int
}

func (f *fakeProvider) CreateSession(context.Context, CreateSessionRequest) (*Session, error) {
	return &Session{ID: "cs_test", URL: "https://pay.test/cs_test", Status: "pending"}, nil
}

func (f *fakeProvider) ConfirmSession(context.Context, string) (*Session, error) {
	f.confirms++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &Session{ID: "cs_test", Status: f.confirmStatus}, nil
}

func confirmRequest(t *testing.T) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/payment/confirm-payment",
		strings.NewReader(`{"sessionId":"cs_test"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	return rec, c
}

func restoreSeams(t *testing.T) {
	t.Helper()
	oldLookup, oldGrant, oldProvider := sessionByProviderID, markPaidAndGrant, provider
	t.Cleanup(func() {
		sessionByProviderID = oldLookup
		markPaidAndGrant = oldGrant
		provider = oldProvider
	})
}

func TestConfirmPayment_FailedGrantKeepsSessionPending(t *testing.T) {
	restoreSeams(t)

	status := "pending"
	grantCalls := 0
	sessionByProviderID = func(context.Context, string, string) (string, string, string, string, error) {
		return "sess-1", "book-1", TypePurchase, status, nil
	}
	markPaidAndGrant = func(context.Context, string, string, string, string, *time.Time) error {
		grantCalls++
		if grantCalls == 1 {
			return errors.New("insert failed")
		}
		status = "paid"
		return nil
	}
	SetProvider(&fakeProvider{confirmStatus: "paid"})

	// The failed grant must not leave the session readable as paid.
	rec, c := confirmRequest(t)
	require.NoError(t, ConfirmPayment(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "pending", status)

	// A retry completes the grant instead of short-circuiting empty-handed.
	rec, c = confirmRequest(t)
	require.NoError(t, ConfirmPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment confirmed")
	assert.Equal(t, 2, grantCalls)
	assert.Equal(t, "paid", status)
}

func TestConfirmPayment_AlreadyPaidIsIdempotent(t *testing.T) {
	restoreSeams(t)

	sessionByProviderID = func(context.Context, string, string) (string, string, string, string, error) {
		return "sess-1", "book-1", TypePurchase, "paid", nil
	}
	markPaidAndGrant = func(context.Context, string, string, string, string, *time.Time) error {
		t.Fatal("grant must not run for a paid session")
		return nil
	}
	fp := &fakeProvider{confirmStatus: "paid"}
	SetProvider(fp)

	rec, c := confirmRequest(t)
	require.NoError(t, ConfirmPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment confirmed")
	assert.Zero(t, fp.confirms)
}

func TestConfirmPayment_ProviderNotPaid(t *testing.T) {
	restoreSeams(t)

	sessionByProviderID = func(context.Context, string, string) (string, string, string, string, error) {
		return "sess-1", "book-1", TypeRent, "pending", nil
	}
	markPaidAndGrant = func(context.Context, string, string, string, string, *time.Time) error {
		t.Fatal("grant must not run for an unpaid session")
		return nil
	}
	SetProvider(&fakeProvider{confirmStatus: "pending"})

	rec, c := confirmRequest(t)
	require.NoError(t, ConfirmPayment(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
