package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"jane@example.com","password":"secret123","first_name":"Jane","last_name":"Doe","birth_date":"1990-04-01"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var patient Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &patient); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if patient.FirstName != "Jane" {
		t.Errorf("expected first name Jane, got %s", patient.FirstName)
	}
	if patient.BirthDate == nil || patient.BirthDate.Year() != 1990 {
		t.Errorf("expected birth date 1990, got %v", patient.BirthDate)
	}
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"jane@example.com","password":"secret123","first_name":"Jane","last_name":"Doe"}`

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		err := h.Register(c)
		if i == 0 && err != nil {
			t.Fatalf("first register failed: %v", err)
		}
		if i == 1 {
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Errorf("expected 400 for duplicate email, got %v", err)
			}
		}
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler()

	// Register first so there is an account to log into.
	regBody := `{"email":"jane@example.com","password":"secret123","first_name":"Jane","last_name":"Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(regBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.Register(c); err != nil {
		t.Fatal(err)
	}

	body := `{"email":"jane@example.com","password":"secret123"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected non-empty token")
	}
	if resp.Role != "patient" {
		t.Errorf("expected role patient, got %s", resp.Role)
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"nobody@example.com","password":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetPatient(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.GetPatient(c); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestHandler_CreateWorker(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"nurse@example.com","password":"secret123","first_name":"Nina","last_name":"Nurse","position":"Registered Nurse"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateWorker(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateWorker_MissingPosition(t *testing.T) {
	h, e := newTestHandler()
	body := `{"email":"nurse@example.com","password":"secret123","first_name":"Nina","last_name":"Nurse"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateWorker(c); err == nil {
		t.Error("expected error for missing position")
	}
}

func TestHandler_DeleteWorker(t *testing.T) {
	h, e := newTestHandler()
	worker, err := h.svc.CreateWorker(context.Background(), &CreateWorkerInput{
		Email:     "nurse@example.com",
		Password:  "secret123",
		FirstName: "Nina",
		LastName:  "Nurse",
		Position:  "Registered Nurse",
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(worker.ID.String())

	if err := h.DeleteWorker(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_ListWorkers(t *testing.T) {
	h, e := newTestHandler()
	_, err := h.svc.CreateWorker(context.Background(), &CreateWorkerInput{
		Email:     "nurse@example.com",
		Password:  "secret123",
		FirstName: "Nina",
		LastName:  "Nurse",
		Position:  "Registered Nurse",
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListWorkers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Registered Nurse") {
		t.Error("expected worker in list response")
	}
}
